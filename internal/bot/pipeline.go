package bot

import (
	"klondike/internal/bot/internal"
	"klondike/internal/domain"
)

// SelectionContext holds the candidates still in play for a move decision.
type SelectionContext struct {
	State      domain.GameState
	Candidates []internal.ValidMove
}

// SelectionRule represents a logic unit that narrows the candidate moves.
// A rule never leaves the context without candidates.
type SelectionRule interface {
	Name() string
	Apply(ctx *SelectionContext)
}

// DefaultRules is the rule order used by GoodBot.
var DefaultRules = []SelectionRule{
	&AvoidRetreatRule{},
	&PreferFoundationRule{},
	&PreferRevealRule{},
	&AvoidShuffleRule{},
	&AvoidDrawRule{},
}

// AvoidRetreatRule drops moves that take a card back off a foundation.
type AvoidRetreatRule struct{}

func (r *AvoidRetreatRule) Name() string { return "AvoidRetreat" }

func (r *AvoidRetreatRule) Apply(ctx *SelectionContext) {
	keepIf(ctx, func(m internal.ValidMove) bool { return !m.Move.Src.IsFoundation() })
}

// PreferFoundationRule keeps foundation plays when there are any.
type PreferFoundationRule struct{}

func (r *PreferFoundationRule) Name() string { return "PreferFoundation" }

func (r *PreferFoundationRule) Apply(ctx *SelectionContext) {
	keepIf(ctx, func(m internal.ValidMove) bool { return m.Move.Dst.IsFoundation() })
}

// PreferRevealRule keeps moves that turn up a hidden tableau card.
type PreferRevealRule struct{}

func (r *PreferRevealRule) Name() string { return "PreferReveal" }

func (r *PreferRevealRule) Apply(ctx *SelectionContext) {
	keepIf(ctx, func(m internal.ValidMove) bool { return m.Reveals(ctx.State) })
}

// AvoidShuffleRule drops tableau to tableau moves that neither reveal a card
// nor empty a column.
type AvoidShuffleRule struct{}

func (r *AvoidShuffleRule) Name() string { return "AvoidShuffle" }

func (r *AvoidShuffleRule) Apply(ctx *SelectionContext) {
	keepIf(ctx, func(m internal.ValidMove) bool {
		if !m.Move.Src.IsTableau() || !m.Move.Dst.IsTableau() {
			return true
		}
		return m.Reveals(ctx.State) || m.EmptiesColumn()
	})
}

// AvoidDrawRule drops the draw action when anything else is left.
type AvoidDrawRule struct{}

func (r *AvoidDrawRule) Name() string { return "AvoidDraw" }

func (r *AvoidDrawRule) Apply(ctx *SelectionContext) {
	keepIf(ctx, func(m internal.ValidMove) bool { return !m.IsDraw() })
}

func keepIf(ctx *SelectionContext, pred func(internal.ValidMove) bool) {
	var kept []internal.ValidMove
	for _, m := range ctx.Candidates {
		if pred(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) > 0 {
		ctx.Candidates = kept
	}
}
