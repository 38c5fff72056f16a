package nakama

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

type storageKey struct {
	collection string
	key        string
	userID     string
}

type storedObject struct {
	value   string
	version int
}

// fakeNakama is an in-memory stand-in for the parts of runtime.NakamaModule
// the adapters use. Storage honors versions like Nakama does: "*" creates
// only, "" overwrites, anything else must match the stored version.
type fakeNakama struct {
	objects map[storageKey]storedObject
	// rejectWrites fails the next n writes with a version rejection.
	rejectWrites int
	writes       int

	usernames map[string]string
	profiles  map[string]string
	wallets   map[string]int64

	leaderboards map[string]bool
	records      map[string]int64

	matches map[string]string // game id -> match id
	signals []string
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{
		objects:      make(map[storageKey]storedObject),
		usernames:    make(map[string]string),
		profiles:     make(map[string]string),
		wallets:      make(map[string]int64),
		leaderboards: make(map[string]bool),
		records:      make(map[string]int64),
		matches:      make(map[string]string),
	}
}

func (f *fakeNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	out := make([]*api.StorageObject, 0, len(reads))
	for _, r := range reads {
		obj, ok := f.objects[storageKey{r.Collection, r.Key, r.UserID}]
		if !ok {
			continue
		}
		out = append(out, &api.StorageObject{
			Collection: r.Collection,
			Key:        r.Key,
			UserId:     r.UserID,
			Value:      obj.value,
			Version:    strconv.Itoa(obj.version),
		})
	}
	return out, nil
}

func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	if f.rejectWrites > 0 {
		f.rejectWrites--
		return nil, runtime.ErrStorageRejectedVersion
	}
	for _, w := range writes {
		obj, exists := f.objects[storageKey{w.Collection, w.Key, w.UserID}]
		switch {
		case w.Version == "*" && exists:
			return nil, runtime.ErrStorageRejectedVersion
		case w.Version != "" && w.Version != "*" && (!exists || strconv.Itoa(obj.version) != w.Version):
			return nil, runtime.ErrStorageRejectedVersion
		}
	}

	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		k := storageKey{w.Collection, w.Key, w.UserID}
		obj := f.objects[k]
		obj.value = w.Value
		obj.version++
		f.objects[k] = obj
		f.writes++
		acks = append(acks, &api.StorageObjectAck{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Version:    strconv.Itoa(obj.version),
		})
	}
	return acks, nil
}

func (f *fakeNakama) MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error) {
	acks, err := f.StorageWrite(ctx, storageWrites)
	return acks, nil, err
}

func (f *fakeNakama) AccountGetId(ctx context.Context, userID string) (*api.Account, error) {
	name, ok := f.usernames[userID]
	if !ok {
		return nil, errors.New("account not found")
	}
	return &api.Account{
		User:   &api.User{Id: userID, Username: name},
		Wallet: `{"coins":` + strconv.FormatInt(f.wallets[userID], 10) + `}`,
	}, nil
}

func (f *fakeNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	f.usernames[userID] = username
	f.profiles[userID] = displayName
	return nil
}

func (f *fakeNakama) WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error) {
	prev := map[string]int64{walletCurrency: f.wallets[userID]}
	f.wallets[userID] += changeset[walletCurrency]
	return prev, map[string]int64{walletCurrency: f.wallets[userID]}, nil
}

func (f *fakeNakama) LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, enableRanks bool) error {
	f.leaderboards[id] = true
	return nil
}

func (f *fakeNakama) LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error) {
	if !f.leaderboards[id] {
		return nil, errors.New("leaderboard not found")
	}
	if score > f.records[ownerID] {
		f.records[ownerID] = score
	}
	return &api.LeaderboardRecord{LeaderboardId: id, OwnerId: ownerID, Score: f.records[ownerID]}, nil
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	gameID, _ := params[MatchLabelKey_GameID].(string)
	matchID := "match-" + gameID
	f.matches[gameID] = matchID
	return matchID, nil
}

func (f *fakeNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	var out []*api.Match
	for gameID, matchID := range f.matches {
		if strings.Contains(query, `"`+gameID+`"`) {
			out = append(out, &api.Match{MatchId: matchID, Authoritative: true})
		}
	}
	return out, nil
}

func (f *fakeNakama) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	f.signals = append(f.signals, id+":"+data)
	return "ok", nil
}

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}
