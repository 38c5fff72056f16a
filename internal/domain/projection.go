package domain

// ClientView is the observer-safe rendering of a state: pile contents,
// draw count and derived metrics, in wire shape.
type ClientView struct {
	Layout
	Summary
}

// Project builds the client view of state. The view never aliases state.
func Project(state GameState, policy ScorePolicy) ClientView {
	return ClientView{
		Layout:  state.Layout(),
		Summary: Summarize(state, policy),
	}
}
