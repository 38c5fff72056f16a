package app

const (
	// DrawOneLabel and DrawThreeLabel are the draw options offered by the new game form.
	DrawOneLabel   = "Draw 1"
	DrawThreeLabel = "Draw 3"

	// DefaultGameType is used when a request names no game.
	DefaultGameType = "klondike"
)
