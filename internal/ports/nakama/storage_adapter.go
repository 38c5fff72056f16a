package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"klondike/internal/domain"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const recordRetries = 3

// storageModule is the slice of runtime.NakamaModule the storage adapter uses.
type storageModule interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error)
}

// NakamaStorageAdapter implements ports.GameStore and ports.PlayerPort on
// Nakama storage. Object versions serve as the optimistic concurrency check.
type NakamaStorageAdapter struct {
	nk storageModule
}

// NewNakamaStorageAdapter creates a new storage adapter.
func NewNakamaStorageAdapter(nk storageModule) *NakamaStorageAdapter {
	return &NakamaStorageAdapter{nk: nk}
}

func gameWrite(game *domain.Game, version string) (*runtime.StorageWrite, error) {
	value, err := json.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game: %w", err)
	}
	return &runtime.StorageWrite{
		Collection:      gamesCollection,
		Key:             game.ID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}, nil
}

func recordWrite(userID string, record ports.PlayerRecord, version string) (*runtime.StorageWrite, error) {
	if record.Games == nil {
		record.Games = []string{}
	}
	value, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player record: %w", err)
	}
	return &runtime.StorageWrite{
		Collection:      playersCollection,
		Key:             playerRecordKey,
		UserID:          userID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}, nil
}

// CreateGame stores a new game and appends its id to the owner's record in one
// MultiUpdate. A concurrent change to the record is retried.
func (a *NakamaStorageAdapter) CreateGame(ctx context.Context, game *domain.Game) error {
	if game.ID == "" || game.Owner == "" {
		return fmt.Errorf("game id and owner are required")
	}

	for attempt := 1; ; attempt++ {
		record, version, err := a.readRecord(ctx, game.Owner)
		if err != nil {
			return err
		}
		record.Games = append(record.Games, game.ID)

		gw, err := gameWrite(game, "*")
		if err != nil {
			return err
		}
		rw, err := recordWrite(game.Owner, record, versionOrCreate(version))
		if err != nil {
			return err
		}

		_, _, err = a.nk.MultiUpdate(ctx, nil, []*runtime.StorageWrite{gw, rw}, nil, nil, false)
		if err == nil {
			return nil
		}
		if errors.Is(err, runtime.ErrStorageRejectedVersion) && attempt < recordRetries {
			continue
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
}

// LoadGame reads a game and the version to pass back to SaveGame.
func (a *NakamaStorageAdapter) LoadGame(ctx context.Context, gameID string) (*domain.Game, string, error) {
	if gameID == "" {
		return nil, "", ports.ErrGameNotFound
	}
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: gamesCollection, Key: gameID},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to read game: %w", err)
	}
	if len(objects) == 0 {
		return nil, "", fmt.Errorf("%w: %s", ports.ErrGameNotFound, gameID)
	}

	game, err := decodeGame(objects[0])
	if err != nil {
		return nil, "", err
	}
	return game, objects[0].GetVersion(), nil
}

// SaveGame writes game if the stored version still equals version.
func (a *NakamaStorageAdapter) SaveGame(ctx context.Context, game *domain.Game, version string) (string, error) {
	if version == "" || version == "*" {
		return "", fmt.Errorf("a stored version is required to save game %s", game.ID)
	}
	w, err := gameWrite(game, version)
	if err != nil {
		return "", err
	}
	acks, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{w})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return "", ports.ErrVersionConflict
		}
		return "", fmt.Errorf("failed to write game: %w", err)
	}
	if len(acks) == 0 {
		return "", fmt.Errorf("no ack for game %s", game.ID)
	}
	return acks[0].GetVersion(), nil
}

// ListGames returns the owner's games in the order they were created. Ids
// whose game object is gone are skipped.
func (a *NakamaStorageAdapter) ListGames(ctx context.Context, ownerID string) ([]*domain.Game, error) {
	record, _, err := a.readRecord(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(record.Games) == 0 {
		return []*domain.Game{}, nil
	}

	reads := make([]*runtime.StorageRead, 0, len(record.Games))
	for _, id := range record.Games {
		reads = append(reads, &runtime.StorageRead{Collection: gamesCollection, Key: id})
	}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return nil, fmt.Errorf("failed to read games: %w", err)
	}

	byID := make(map[string]*api.StorageObject, len(objects))
	for _, obj := range objects {
		byID[obj.GetKey()] = obj
	}
	games := make([]*domain.Game, 0, len(record.Games))
	for _, id := range record.Games {
		obj, ok := byID[id]
		if !ok {
			continue
		}
		game, err := decodeGame(obj)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

// InitPlayer creates an empty record once.
func (a *NakamaStorageAdapter) InitPlayer(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	w, err := recordWrite(userID, ports.PlayerRecord{}, "*")
	if err != nil {
		return false, err
	}
	if _, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{w}); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create player record: %w", err)
	}
	return true, nil
}

// LoadPlayer returns the player's record, empty when none was written yet.
func (a *NakamaStorageAdapter) LoadPlayer(ctx context.Context, userID string) (ports.PlayerRecord, error) {
	record, _, err := a.readRecord(ctx, userID)
	return record, err
}

// RecordWin bumps the won counter and keeps the best score.
func (a *NakamaStorageAdapter) RecordWin(ctx context.Context, userID string, score int) error {
	for attempt := 1; ; attempt++ {
		record, version, err := a.readRecord(ctx, userID)
		if err != nil {
			return err
		}
		record.Won++
		if score > record.BestScore {
			record.BestScore = score
		}

		w, err := recordWrite(userID, record, versionOrCreate(version))
		if err != nil {
			return err
		}
		_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{w})
		if err == nil {
			return nil
		}
		if errors.Is(err, runtime.ErrStorageRejectedVersion) && attempt < recordRetries {
			continue
		}
		return fmt.Errorf("failed to record win: %w", err)
	}
}

func (a *NakamaStorageAdapter) readRecord(ctx context.Context, userID string) (ports.PlayerRecord, string, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: playersCollection, Key: playerRecordKey, UserID: userID},
	})
	if err != nil {
		return ports.PlayerRecord{}, "", fmt.Errorf("failed to read player record: %w", err)
	}
	record := ports.PlayerRecord{Games: []string{}}
	if len(objects) == 0 {
		return record, "", nil
	}
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &record); err != nil {
		return ports.PlayerRecord{}, "", fmt.Errorf("failed to unmarshal player record: %w", err)
	}
	return record, objects[0].GetVersion(), nil
}

func decodeGame(obj *api.StorageObject) (*domain.Game, error) {
	var game domain.Game
	if err := json.Unmarshal([]byte(obj.GetValue()), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", obj.GetKey(), err)
	}
	return &game, nil
}

// versionOrCreate maps "no stored object" onto the create-only version.
func versionOrCreate(version string) string {
	if version == "" {
		return "*"
	}
	return version
}

var (
	_ ports.GameStore  = (*NakamaStorageAdapter)(nil)
	_ ports.PlayerPort = (*NakamaStorageAdapter)(nil)
)
