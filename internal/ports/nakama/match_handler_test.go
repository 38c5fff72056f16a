package nakama

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"klondike/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{
		opCode:    opCode,
		data:      append([]byte(nil), data...),
		presences: presences,
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) byOpCode(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.messages {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

func (md *mockDispatcher) reset() {
	md.messages = nil
}

// fakePresence implements the Presence methods the handler reads.
type fakePresence struct {
	runtime.Presence
	userID   string
	username string
}

func (p fakePresence) GetUserId() string    { return p.userID }
func (p fakePresence) GetUsername() string  { return p.username }
func (p fakePresence) GetSessionId() string { return "session-" + p.userID }

type fakeMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (d fakeMatchData) GetUserId() string { return d.userID }
func (d fakeMatchData) GetOpCode() int64  { return d.opCode }
func (d fakeMatchData) GetData() []byte   { return d.data }

type matchFixture struct {
	*rpcFixture
	handler    *matchHandler
	dispatcher *mockDispatcher
	gameID     string
	state      *MatchState
	owner      runtime.Presence
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	f := newRPCFixture(t)
	id := f.createGame(t, "u1", `{"color":"red","seed":5}`).Game.ID
	handler := newMatchHandler(f.games, f.core, 0, 3)

	state, tickRate, label := handler.MatchInit(context.Background(), noopLogger{}, nil, nil, map[string]interface{}{MatchLabelKey_GameID: id})
	if state == nil || label == "" {
		t.Fatal("MatchInit returned no state")
	}
	if tickRate != defaultTickRate {
		t.Errorf("tick rate = %d, want %d", tickRate, defaultTickRate)
	}

	return &matchFixture{
		rpcFixture: f,
		handler:    handler,
		dispatcher: &mockDispatcher{},
		gameID:     id,
		state:      state.(*MatchState),
		owner:      fakePresence{userID: "u1", username: "alice"},
	}
}

func (mf *matchFixture) join(presences ...runtime.Presence) {
	mf.handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, mf.dispatcher, 1, mf.state, presences)
}

func (mf *matchFixture) loop(tick int64, messages ...runtime.MatchData) interface{} {
	return mf.handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, mf.dispatcher, tick, mf.state, messages)
}

func decodeLabel(t *testing.T, label string) map[string]interface{} {
	t.Helper()
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(label), &fields); err != nil {
		t.Fatalf("label %q is not JSON: %v", label, err)
	}
	return fields
}

func TestMatchInitLabel(t *testing.T) {
	mf := newMatchFixture(t)

	label, err := matchLabel(mf.state)
	if err != nil {
		t.Fatalf("label error: %v", err)
	}
	fields := decodeLabel(t, label)
	if fields[MatchLabelKey_GameID] != mf.gameID || fields[MatchLabelKey_Owner] != "u1" {
		t.Errorf("label = %v", fields)
	}
	if fields[MatchLabelKey_Spectators] != float64(0) || fields[MatchLabelKey_Active] != true {
		t.Errorf("label = %v", fields)
	}
	if mf.state.View.CardsRemaining != 52 || mf.state.Profile.ID != mf.gameID {
		t.Errorf("initial projection = %+v", mf.state.Profile)
	}

	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{name: "Missing game id", params: map[string]interface{}{}},
		{name: "Unknown game", params: map[string]interface{}{MatchLabelKey_GameID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _, _ := mf.handler.MatchInit(context.Background(), noopLogger{}, nil, nil, tt.params)
			if state != nil {
				t.Errorf("expected no state, got %+v", state)
			}
		})
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	mf := newMatchFixture(t)
	token, err := mf.games.SpectatorToken(context.Background(), mf.gameID, "u1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	tests := []struct {
		name     string
		presence runtime.Presence
		metadata map[string]string
		want     bool
	}{
		{name: "Owner", presence: mf.owner, want: true},
		{name: "Spectator with token", presence: fakePresence{userID: "u2"}, metadata: map[string]string{"token": token}, want: true},
		{name: "Spectator without token", presence: fakePresence{userID: "u2"}, want: false},
		{name: "Spectator with bad token", presence: fakePresence{userID: "u2"}, metadata: map[string]string{"token": "bad"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, reason := mf.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, mf.dispatcher, 1, mf.state, tt.presence, tt.metadata)
			if ok != tt.want {
				t.Errorf("accepted = %t (%s), want %t", ok, reason, tt.want)
			}
		})
	}
}

func TestMatchJoinAndLeave(t *testing.T) {
	mf := newMatchFixture(t)
	spectator := fakePresence{userID: "u2", username: "bob"}

	mf.join(mf.owner)
	states := mf.dispatcher.byOpCode(OpGameState)
	if len(states) != 1 || len(states[0].presences) != 1 || states[0].presences[0].GetUserId() != "u1" {
		t.Fatalf("owner join messages = %+v", mf.dispatcher.messages)
	}
	if len(mf.dispatcher.byOpCode(OpSpectatorJoined)) != 0 {
		t.Error("nobody else was present to hear the owner join")
	}

	mf.dispatcher.reset()
	mf.join(spectator)
	joined := mf.dispatcher.byOpCode(OpSpectatorJoined)
	if len(joined) != 1 || len(joined[0].presences) != 1 || joined[0].presences[0].GetUserId() != "u1" {
		t.Fatalf("spectator join notice = %+v", joined)
	}
	var notice presenceMessage
	if err := json.Unmarshal(joined[0].data, &notice); err != nil {
		t.Fatalf("decode notice: %v", err)
	}
	if notice.UserID != "u2" || notice.Username != "bob" || notice.Spectators != 1 {
		t.Errorf("notice = %+v", notice)
	}
	if fields := decodeLabel(t, mf.dispatcher.lastLabel); fields[MatchLabelKey_Spectators] != float64(1) {
		t.Errorf("label after join = %v", fields)
	}

	mf.dispatcher.reset()
	mf.handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, mf.dispatcher, 2, mf.state, []runtime.Presence{spectator})
	left := mf.dispatcher.byOpCode(OpSpectatorLeft)
	if len(left) != 1 || left[0].presences[0].GetUserId() != "u1" {
		t.Fatalf("leave notice = %+v", left)
	}
	if _, ok := mf.state.Presences["u2"]; ok {
		t.Error("spectator still present")
	}
}

func TestMatchLoopMoves(t *testing.T) {
	mf := newMatchFixture(t)
	spectator := fakePresence{userID: "u2", username: "bob"}
	mf.join(mf.owner, spectator)
	mf.dispatcher.reset()

	draw := fakeMatchData{userID: "u1", opCode: OpMakeMove, data: []byte(`{"src":"draw","dst":"discard"}`)}
	mf.loop(2, draw)

	states := mf.dispatcher.byOpCode(OpGameState)
	if len(states) != 1 || states[0].presences != nil {
		t.Fatalf("expected one broadcast state, got %+v", mf.dispatcher.messages)
	}
	var msg gameStateMessage
	if err := json.Unmarshal(states[0].data, &msg); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(msg.View.Discard) != 1 || !strings.HasPrefix(msg.Description, "Drew ") || msg.Game.Moves != 1 {
		t.Errorf("state message = %+v", msg)
	}
	if len(mf.state.View.Discard) != 1 {
		t.Errorf("match projection not updated")
	}

	tests := []struct {
		name   string
		msg    fakeMatchData
		to     string
		reason domain.Reason
	}{
		{name: "Spectator move", msg: fakeMatchData{userID: "u2", opCode: OpMakeMove, data: []byte(`{"src":"draw","dst":"discard"}`)}, to: "u2"},
		{name: "Illegal move", msg: fakeMatchData{userID: "u1", opCode: OpMakeMove, data: []byte(`{"src":"pile2","dst":"pile2"}`)}, to: "u1", reason: domain.ReasonSameSourceDestination},
		{name: "Garbage", msg: fakeMatchData{userID: "u1", opCode: OpMakeMove, data: []byte(`{`)}, to: "u1", reason: domain.ReasonMalformedMove},
		{name: "Spectator autoplay", msg: fakeMatchData{userID: "u2", opCode: OpAutoplay}, to: "u2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mf.dispatcher.reset()
			mf.loop(3, tt.msg)

			rejected := mf.dispatcher.byOpCode(OpMoveRejected)
			if len(rejected) != 1 || len(rejected[0].presences) != 1 || rejected[0].presences[0].GetUserId() != tt.to {
				t.Fatalf("rejections = %+v", mf.dispatcher.messages)
			}
			var body moveRejectedMessage
			if err := json.Unmarshal(rejected[0].data, &body); err != nil {
				t.Fatalf("decode rejection: %v", err)
			}
			if body.Reason != string(tt.reason) || body.Message == "" {
				t.Errorf("rejection = %+v", body)
			}
			if len(mf.dispatcher.byOpCode(OpGameState)) != 0 {
				t.Error("rejected message must not broadcast state")
			}
		})
	}
}

func TestMatchLoopWin(t *testing.T) {
	mf := newMatchFixture(t)
	mf.setNearlyWon(t, mf.gameID)
	mf.join(mf.owner)
	mf.dispatcher.reset()

	data, err := json.Marshal(kingMove().Request())
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	mf.loop(2, fakeMatchData{userID: "u1", opCode: OpMakeMove, data: data})

	won := mf.dispatcher.byOpCode(OpGameWon)
	if len(won) != 1 {
		t.Fatalf("messages = %+v", mf.dispatcher.messages)
	}
	var body gameWonMessage
	if err := json.Unmarshal(won[0].data, &body); err != nil {
		t.Fatalf("decode win: %v", err)
	}
	if body.Winner != "alice" || body.Score != 1020 || body.GameID != mf.gameID {
		t.Errorf("win = %+v", body)
	}
	if mf.state.Active {
		t.Error("match still marks the game active")
	}
	if fields := decodeLabel(t, mf.dispatcher.lastLabel); fields[MatchLabelKey_Active] != false {
		t.Errorf("label after win = %v", fields)
	}
}

func TestMatchLoopIdleTermination(t *testing.T) {
	mf := newMatchFixture(t)

	mf.join(mf.owner)
	mf.handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, mf.dispatcher, 2, mf.state, []runtime.Presence{mf.owner})

	for tick := int64(3); tick < 5; tick++ {
		if mf.loop(tick) == nil {
			t.Fatalf("terminated early at tick %d", tick)
		}
	}
	if mf.loop(5) != nil {
		t.Fatal("expected idle match to terminate")
	}
}

func TestMatchSignalRefresh(t *testing.T) {
	mf := newMatchFixture(t)
	mf.join(mf.owner)
	mf.dispatcher.reset()

	if _, err := mf.games.Move(context.Background(), mf.gameID, "u1", domain.Move{Src: domain.DrawPile, Dst: domain.DiscardPile}); err != nil {
		t.Fatalf("move error: %v", err)
	}

	_, result := mf.handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, mf.dispatcher, 2, mf.state, signalRefresh)
	if result != "ok" {
		t.Errorf("signal result = %q", result)
	}
	if len(mf.dispatcher.byOpCode(OpGameState)) != 1 || len(mf.state.View.Discard) != 1 {
		t.Errorf("refresh did not broadcast the stored game")
	}

	if _, result := mf.handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, mf.dispatcher, 3, mf.state, "bogus"); result != "" {
		t.Errorf("unknown signal result = %q", result)
	}
}
