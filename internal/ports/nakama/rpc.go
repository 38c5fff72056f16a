package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"klondike/internal/app"
	"klondike/internal/app/games"
	"klondike/internal/domain"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// matchRegistry is the slice of runtime.NakamaModule used to find live spectate matches.
type matchRegistry interface {
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
	MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error)
	MatchSignal(ctx context.Context, id string, data string) (string, error)
}

// Module holds the services behind the solitaire RPCs. Its methods have the
// runtime RPC signature and are registered directly.
type Module struct {
	games       *games.Service
	core        *app.Service
	matches     matchRegistry
	defaultDraw int
}

// NewModule creates the RPC module. matches may be nil, which disables live
// match lookup.
func NewModule(gameService *games.Service, core *app.Service, matches matchRegistry, defaultDraw int) *Module {
	if !domain.ValidDrawCount(defaultDraw) {
		defaultDraw = 1
	}
	return &Module{
		games:       gameService,
		core:        core,
		matches:     matches,
		defaultDraw: defaultDraw,
	}
}

type gameRef struct {
	GameID string `json:"game_id"`
	Token  string `json:"token,omitempty"`
}

type gameResponse struct {
	Game  domain.GameProfile `json:"game"`
	View  domain.ClientView  `json:"view"`
	Moves []moveEntry        `json:"moves,omitempty"`
}

type moveEntry struct {
	domain.MoveRecord
	Description string `json:"description"`
}

type makeMoveRequest struct {
	GameID string          `json:"game_id"`
	Move   json.RawMessage `json:"move"`
}

type moveResponse struct {
	GameID      string            `json:"game_id"`
	Description string            `json:"description,omitempty"`
	Applied     int               `json:"applied"`
	View        domain.ClientView `json:"view"`
	Active      bool              `json:"active"`
	Winner      string            `json:"winner,omitempty"`
	Score       int               `json:"score"`
}

type seedRequest struct {
	Seed *int64 `json:"seed,omitempty"`
	Draw string `json:"draw,omitempty"`
}

type hintResponse struct {
	Found       bool                `json:"found"`
	Move        *domain.MoveRequest `json:"move,omitempty"`
	Description string              `json:"description,omitempty"`
}

type spectatorTokenResponse struct {
	Token   string `json:"token"`
	MatchID string `json:"match_id,omitempty"`
}

// Register adds every solitaire RPC to initializer.
func (m *Module) Register(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateGame:     m.RpcCreateGame,
		RpcGetGame:        m.RpcGetGame,
		RpcMakeMove:       m.RpcMakeMove,
		RpcListGames:      m.RpcListGames,
		RpcShuffle:        m.RpcShuffle,
		RpcInitialState:   m.RpcInitialState,
		RpcHint:           m.RpcHint,
		RpcAutoplay:       m.RpcAutoplay,
		RpcPlayOut:        m.RpcPlayOut,
		RpcSpectatorToken: m.RpcSpectatorToken,
		RpcSpectate:       m.RpcSpectate,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("failed to register rpc %s: %w", id, err)
		}
	}
	return nil
}

// RpcCreateGame deals a new game for the caller.
//
// Payload: {"game": "klondike", "color": "red", "draw": "Draw 3", "seed": 42}
// Returns: the game profile and its client view.
func (m *Module) RpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	var req app.NewGameRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	game, _, err := m.games.Create(ctx, userID, req)
	if err != nil {
		logger.Warn("RpcCreateGame [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}

	logger.Info("RpcCreateGame [User:%s]: Created game %s (draw %d)", userID, game.ID, game.DrawCount)
	return encodeResponse(gameResponse{
		Game: domain.ProjectGame(game, m.core.Now()),
		View: m.core.View(game),
	})
}

// RpcGetGame returns a game with its move log. Non-owners pass a spectator token.
func (m *Module) RpcGetGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	var req gameRef
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	game, err := m.games.Get(ctx, req.GameID, userID, req.Token)
	if err != nil {
		logger.Debug("RpcGetGame [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}

	moves := make([]moveEntry, 0, len(game.Moves))
	for _, rec := range game.Moves {
		moves = append(moves, moveEntry{MoveRecord: rec, Description: domain.DescribeMove(rec)})
	}
	return encodeResponse(gameResponse{
		Game:  domain.ProjectGame(game, m.core.Now()),
		View:  m.core.View(game),
		Moves: moves,
	})
}

// RpcMakeMove applies one move to the caller's game.
//
// Payload: {"game_id": "...", "move": {"src": "pile3", "dst": "stack1", "cards": [...]}}
func (m *Module) RpcMakeMove(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	var req makeMoveRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}
	move, err := domain.DecodeMove(req.Move)
	if err != nil {
		return "", toRuntimeError(err)
	}

	result, err := m.games.Move(ctx, req.GameID, userID, move)
	if err != nil {
		logger.Debug("RpcMakeMove [User:%s]: Move on %s refused: %v", userID, req.GameID, err)
		return "", toRuntimeError(err)
	}
	m.afterChange(ctx, logger, "RpcMakeMove", userID, result)

	return encodeResponse(m.moveResponse(result))
}

// RpcAutoplay sends every playable card to the foundations.
func (m *Module) RpcAutoplay(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	var req gameRef
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	result, err := m.games.Autoplay(ctx, req.GameID, userID)
	if err != nil {
		logger.Debug("RpcAutoplay [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	m.afterChange(ctx, logger, "RpcAutoplay", userID, result)

	return encodeResponse(m.moveResponse(result))
}

// RpcPlayOut lets the hint brain keep playing the caller's game until it
// runs out of useful moves or the autoplay limit.
func (m *Module) RpcPlayOut(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	var req gameRef
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	result, err := m.games.PlayOut(ctx, req.GameID, userID)
	if err != nil {
		logger.Debug("RpcPlayOut [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	m.afterChange(ctx, logger, "RpcPlayOut", userID, result)
	logger.Info("RpcPlayOut [User:%s]: Played %d moves in game %s", userID, len(result.Events), req.GameID)

	return encodeResponse(m.moveResponse(result))
}

// afterChange logs settlement problems and pokes the live match, if any.
func (m *Module) afterChange(ctx context.Context, logger runtime.Logger, caller, userID string, result games.MoveResult) {
	if result.SettlementErr != nil {
		logger.Warn("%s [User:%s]: Game %s won but settlement failed: %v", caller, userID, result.Game.ID, result.SettlementErr)
	}
	if len(result.Events) == 0 {
		return
	}
	matchID, err := m.findMatch(ctx, result.Game.ID)
	if err != nil {
		logger.Warn("%s [User:%s]: Failed to look up match for %s: %v", caller, userID, result.Game.ID, err)
		return
	}
	if matchID == "" {
		return
	}
	if _, err := m.matches.MatchSignal(ctx, matchID, signalRefresh); err != nil {
		logger.Warn("%s [User:%s]: Failed to signal match %s: %v", caller, userID, matchID, err)
	}
}

func (m *Module) moveResponse(result games.MoveResult) moveResponse {
	resp := moveResponse{
		GameID: result.Game.ID,
		View:   m.core.View(result.Game),
		Active: result.Game.Active,
		Winner: result.Game.Winner,
		Score:  result.Game.Score,
	}
	for _, ev := range result.Events {
		if p, ok := ev.Payload.(app.MoveAppliedPayload); ok {
			resp.Applied++
			resp.Description = p.Description
		}
	}
	return resp
}

// RpcListGames returns the caller's game profiles and totals.
func (m *Module) RpcListGames(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	list, err := m.games.List(ctx, userID)
	if err != nil {
		logger.Error("RpcListGames [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	return encodeResponse(list)
}

// RpcShuffle returns a shuffled deck, replayable with a seed.
func (m *Module) RpcShuffle(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req seedRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}
	return encodeResponse(map[string]interface{}{"cards": m.deck(req)})
}

// RpcInitialState deals a fresh state without storing it.
func (m *Module) RpcInitialState(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req seedRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	state, err := domain.Deal(m.deck(req), app.DrawCountFor(req.Draw, m.defaultDraw))
	if err != nil {
		logger.Error("RpcInitialState: Failed to deal: %v", err)
		return "", toRuntimeError(err)
	}
	return encodeResponse(map[string]interface{}{"state": domain.Project(state, m.core.Policy())})
}

func (m *Module) deck(req seedRequest) []domain.Card {
	if req.Seed != nil {
		return domain.SeededDeck(*req.Seed)
	}
	return m.core.Shuffle()
}

// RpcHint suggests the next move for the caller's game.
func (m *Module) RpcHint(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	var req gameRef
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	move, ok, err := m.games.Hint(ctx, req.GameID, userID)
	if err != nil {
		logger.Debug("RpcHint [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	if !ok {
		return encodeResponse(hintResponse{})
	}

	wire := move.Request()
	return encodeResponse(hintResponse{
		Found: true,
		Move:  &wire,
		Description: domain.DescribeMove(domain.MoveRecord{
			Cards: move.Cards,
			Src:   move.Src,
			Dst:   move.Dst,
		}),
	})
}

// RpcSpectatorToken issues a spectator token for the caller's game and
// returns the live match spectators can join, creating it when none exists.
func (m *Module) RpcSpectatorToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", toRuntimeError(err)
	}

	var req gameRef
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	token, err := m.games.SpectatorToken(ctx, req.GameID, userID)
	if err != nil {
		logger.Warn("RpcSpectatorToken [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}

	resp := spectatorTokenResponse{Token: token}
	if m.matches != nil {
		matchID, err := m.findOrCreateMatch(ctx, req.GameID)
		if err != nil {
			logger.Error("RpcSpectatorToken [User:%s]: Failed to open match for %s: %v", userID, req.GameID, err)
			return "", toRuntimeError(err)
		}
		logger.Info("RpcSpectatorToken [User:%s]: Game %s is watchable in match %s", userID, req.GameID, matchID)
		resp.MatchID = matchID
	}
	return encodeResponse(resp)
}

// RpcSpectate returns the projected state of a game for a token holder.
func (m *Module) RpcSpectate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req gameRef
	if err := decodePayload(payload, &req); err != nil {
		return "", toRuntimeError(err)
	}

	game, err := m.games.Get(ctx, req.GameID, userID, req.Token)
	if err != nil {
		logger.Debug("RpcSpectate [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	return encodeResponse(gameResponse{
		Game: domain.ProjectGame(game, m.core.Now()),
		View: m.core.View(game),
	})
}

// findMatch returns the id of the live match for gameID, or "" when none runs.
func (m *Module) findMatch(ctx context.Context, gameID string) (string, error) {
	if m.matches == nil {
		return "", nil
	}
	query := fmt.Sprintf("+label.%s:%q", MatchLabelKey_GameID, gameID)
	matches, err := m.matches.MatchList(ctx, 1, true, "", nil, nil, query)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].GetMatchId(), nil
}

func (m *Module) findOrCreateMatch(ctx context.Context, gameID string) (string, error) {
	matchID, err := m.findMatch(ctx, gameID)
	if err != nil || matchID != "" {
		return matchID, err
	}
	return m.matches.MatchCreate(ctx, MatchNameSpectate, map[string]interface{}{
		MatchLabelKey_GameID: gameID,
	})
}
