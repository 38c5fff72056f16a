package nakama

const (
	RpcCreateGame     = "solitaire_create_game"
	RpcGetGame        = "solitaire_get_game"
	RpcMakeMove       = "solitaire_make_move"
	RpcListGames      = "solitaire_list_games"
	RpcShuffle        = "solitaire_shuffle"
	RpcInitialState   = "solitaire_initial_state"
	RpcHint           = "solitaire_hint"
	RpcAutoplay       = "solitaire_autoplay"
	RpcPlayOut        = "solitaire_play_out"
	RpcSpectatorToken = "solitaire_spectator_token"
	RpcSpectate       = "solitaire_spectate"

	// MatchNameSpectate is the authoritative match handler name registered with Nakama.
	MatchNameSpectate = "solitaire_spectate_match"
)

// Storage layout.
const (
	// Games are owned by the system user so spectators can load them by id alone.
	gamesCollection   = "solitaire_games"
	playersCollection = "solitaire_players"
	playerRecordKey   = "record"
)

// Runtime env keys.
const (
	envSpectatorSecret = "solitaire_spectator_secret"
	envSpectatorIssuer = "solitaire_spectator_issuer"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpMakeMove int64 = 1
	OpAutoplay int64 = 2

	// Server -> Client events
	OpGameState       int64 = 100
	OpMoveRejected    int64 = 101
	OpGameWon         int64 = 102
	OpSpectatorJoined int64 = 103
	OpSpectatorLeft   int64 = 104
)

// Match label keys, queryable with "+label.<key>:<value>".
const (
	MatchLabelKey_GameID     = "game_id"
	MatchLabelKey_Owner      = "owner"
	MatchLabelKey_Spectators = "spectators"
	MatchLabelKey_Active     = "active"
)

// signalRefresh asks a live match to reload its game from storage.
const signalRefresh = "refresh"
