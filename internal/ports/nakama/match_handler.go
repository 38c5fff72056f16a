package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"klondike/internal/app"
	"klondike/internal/app/games"
	"klondike/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultTickRate  = 5
	defaultIdleTicks = 300
)

// MatchState holds the runtime state of a spectate match. The game itself
// stays in storage; the match keeps a projection for broadcasting.
type MatchState struct {
	GameID    string                      `json:"game_id"`
	Owner     string                      `json:"owner"`
	Active    bool                        `json:"active"`
	Tick      int64                       `json:"tick"`
	IdleTicks int                         `json:"idle_ticks"` // Consecutive ticks with nobody present
	Presences map[string]runtime.Presence `json:"-"`          // Map UserId -> Presence for targeted messaging
	Profile   domain.GameProfile          `json:"-"`
	View      domain.ClientView           `json:"-"`
}

// spectatorCount is the number of presences other than the owner.
func (ms *MatchState) spectatorCount() int {
	count := 0
	for userID := range ms.Presences {
		if userID != ms.Owner {
			count++
		}
	}
	return count
}

type matchHandler struct {
	games     *games.Service
	core      *app.Service
	tickRate  int
	idleTicks int
}

func newMatchHandler(gameService *games.Service, core *app.Service, tickRate, idleTicks int) *matchHandler {
	if tickRate <= 0 {
		tickRate = defaultTickRate
	}
	if idleTicks <= 0 {
		idleTicks = defaultIdleTicks
	}
	return &matchHandler{games: gameService, core: core, tickRate: tickRate, idleTicks: idleTicks}
}

type gameStateMessage struct {
	GameID string             `json:"game_id"`
	Game   domain.GameProfile `json:"game"`
	View   domain.ClientView  `json:"view"`
	// Description is set when the broadcast follows a move.
	Description string `json:"description,omitempty"`
}

type moveRejectedMessage struct {
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

type presenceMessage struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Spectators int    `json:"spectators"`
}

type gameWonMessage struct {
	GameID string `json:"game_id"`
	Winner string `json:"winner"`
	Score  int    `json:"score"`
	Moves  int    `json:"moves"`
}

// MatchInit loads the game named by params["game_id"].
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	gameID, _ := params[MatchLabelKey_GameID].(string)
	if gameID == "" {
		logger.Error("MatchInit: Missing game id.")
		return nil, 0, ""
	}

	game, err := mh.games.Load(ctx, gameID)
	if err != nil {
		logger.Error("MatchInit: Failed to load game %s: %v", gameID, err)
		return nil, 0, ""
	}

	state := &MatchState{
		GameID:    game.ID,
		Owner:     game.Owner,
		Active:    game.Active,
		Presences: make(map[string]runtime.Presence),
		Profile:   domain.ProjectGame(game, mh.core.Now()),
		View:      mh.core.View(game),
	}

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Debug("MatchInit: Spectate match for game %s.", gameID)
	return state, mh.tickRate, label
}

// MatchJoinAttempt admits the owner, and anyone presenting a spectator token
// for this game in metadata["token"].
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if presence.GetUserId() == matchState.Owner {
		return matchState, true, ""
	}
	if err := mh.games.Authorize(matchState.GameID, matchState.Owner, presence.GetUserId(), metadata["token"]); err != nil {
		logger.Debug("MatchJoinAttempt: User %s refused for game %s: %v", presence.GetUserId(), matchState.GameID, err)
		return matchState, false, "spectator token required"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
	}
	matchState.IdleTicks = 0

	// Joiners get the current state; everyone else hears who arrived.
	mh.sendState(matchState, dispatcher, logger, presences, "")
	for _, p := range presences {
		mh.broadcastPresence(matchState, dispatcher, logger, OpSpectatorJoined, p, presences)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more presences leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		logger.Debug("MatchLeave: User %s left game %s.", p.GetUserId(), matchState.GameID)
	}
	for _, p := range presences {
		mh.broadcastPresence(matchState, dispatcher, logger, OpSpectatorLeft, p, nil)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLoop applies owner moves and ends the match once it has been empty
// for idleTicks ticks.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpMakeMove:
			mh.handleMakeMove(ctx, matchState, dispatcher, logger, msg)
		case OpAutoplay:
			mh.handleAutoplay(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if len(matchState.Presences) == 0 {
		matchState.IdleTicks++
		if matchState.IdleTicks >= mh.idleTicks {
			logger.Info("MatchLoop: Terminating idle match for game %s.", matchState.GameID)
			return nil
		}
	} else {
		matchState.IdleTicks = 0
	}

	return matchState
}

func (mh *matchHandler) handleMakeMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.Owner {
		logger.Warn("handleMakeMove: User %s is not the owner of game %s", senderID, state.GameID)
		mh.sendRejection(state, dispatcher, logger, senderID, app.ErrNotOwner)
		return
	}

	move, err := domain.DecodeMove(msg.GetData())
	if err != nil {
		mh.sendRejection(state, dispatcher, logger, senderID, err)
		return
	}

	result, err := mh.games.Move(ctx, state.GameID, senderID, move)
	if err != nil {
		logger.Debug("handleMakeMove: Move on %s refused: %v", state.GameID, err)
		mh.sendRejection(state, dispatcher, logger, senderID, err)
		return
	}
	mh.applyResult(state, dispatcher, logger, result)
}

func (mh *matchHandler) handleAutoplay(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	result, err := mh.games.Autoplay(ctx, state.GameID, senderID)
	if err != nil {
		logger.Debug("handleAutoplay: Autoplay on %s refused: %v", state.GameID, err)
		mh.sendRejection(state, dispatcher, logger, senderID, err)
		return
	}
	mh.applyResult(state, dispatcher, logger, result)
}

// applyResult broadcasts the state after a persisted change.
func (mh *matchHandler) applyResult(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, result games.MoveResult) {
	if result.SettlementErr != nil {
		logger.Warn("applyResult: Game %s won but settlement failed: %v", state.GameID, result.SettlementErr)
	}
	if len(result.Events) == 0 {
		return
	}

	description := ""
	for _, ev := range result.Events {
		if p, ok := ev.Payload.(app.MoveAppliedPayload); ok {
			description = p.Description
		}
	}
	mh.refresh(state, dispatcher, logger, result.Game, description)
}

// refresh stores game's projection in the match and broadcasts it, followed
// by a win notice when the game just ended.
func (mh *matchHandler) refresh(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, game *domain.Game, description string) {
	wasActive := state.Active
	state.Profile = domain.ProjectGame(game, mh.core.Now())
	state.View = mh.core.View(game)
	state.Active = game.Active
	mh.sendState(state, dispatcher, logger, nil, description)

	if wasActive && !game.Active {
		won := gameWonMessage{
			GameID: game.ID,
			Winner: game.Winner,
			Score:  game.Score,
			Moves:  len(game.Moves),
		}
		mh.broadcast(dispatcher, logger, OpGameWon, won, nil)
		mh.updateLabel(state, dispatcher, logger)
	}
}

// sendState sends the current projection to presences, or to everyone when
// presences is nil.
func (mh *matchHandler) sendState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, presences []runtime.Presence, description string) {
	mh.broadcast(dispatcher, logger, OpGameState, gameStateMessage{
		GameID:      state.GameID,
		Game:        state.Profile,
		View:        state.View,
		Description: description,
	}, presences)
}

func (mh *matchHandler) broadcastPresence(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, p runtime.Presence, exclude []runtime.Presence) {
	recipients := make([]runtime.Presence, 0, len(state.Presences))
	for userID, presence := range state.Presences {
		if containsPresence(exclude, userID) {
			continue
		}
		recipients = append(recipients, presence)
	}
	if len(recipients) == 0 {
		return
	}
	mh.broadcast(dispatcher, logger, opCode, presenceMessage{
		UserID:     p.GetUserId(),
		Username:   p.GetUsername(),
		Spectators: state.spectatorCount(),
	}, recipients)
}

func containsPresence(presences []runtime.Presence, userID string) bool {
	for _, p := range presences {
		if p.GetUserId() == userID {
			return true
		}
	}
	return false
}

// sendRejection tells one user why their message was refused.
func (mh *matchHandler) sendRejection(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send rejection to %s: Presence not found", userID)
		return
	}

	msg := moveRejectedMessage{Message: err.Error()}
	if reason, ok := domain.ReasonOf(err); ok {
		msg.Reason = string(reason)
	} else if !knownMatchError(err) {
		msg.Message = "internal error"
	}
	mh.broadcast(dispatcher, logger, OpMoveRejected, msg, []runtime.Presence{presence})
}

func knownMatchError(err error) bool {
	return errors.Is(err, app.ErrNotOwner) || errors.Is(err, app.ErrGameOver)
}

func (mh *matchHandler) broadcast(dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload interface{}, presences []runtime.Presence) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal message %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, data, presences, nil, true); err != nil {
		logger.Error("Failed to broadcast message %d: %v", opCode, err)
	}
}

// matchLabel renders the label as JSON queryable with "+label.<key>:<value>".
func matchLabel(state *MatchState) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_GameID:     state.GameID,
		MatchLabelKey_Owner:      state.Owner,
		MatchLabelKey_Spectators: state.spectatorCount(),
		MatchLabelKey_Active:     state.Active,
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

// MatchSignal handles signalRefresh, sent after a game changed outside the match.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	if data != signalRefresh {
		logger.Warn("MatchSignal: Unknown signal %q", data)
		return matchState, ""
	}

	game, err := mh.games.Load(ctx, matchState.GameID)
	if err != nil {
		logger.Error("MatchSignal: Failed to reload game %s: %v", matchState.GameID, err)
		return matchState, ""
	}
	mh.refresh(matchState, dispatcher, logger, game, "")
	return matchState, "ok"
}
