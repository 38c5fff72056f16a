package bot

import botinternal "klondike/internal/bot/internal"

const finishBonus = 1000.0

// DefaultTuning opens up the tableau early and races cards home late.
var DefaultTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		FoundationWeight:  6.0,
		HiddenWeight:      -8.0,
		EmptyColumnWeight: 3.0,
		MobilityWeight:    0.6,
		StockWeight:       -0.1,
		BuriedLowWeight:   -2.0,
		RevealBonus:       4.0,
		DrawPenalty:       1.0,
		RetreatPenalty:    12.0,
		FinishBonus:       finishBonus,
	},
	Mid: botinternal.PhaseWeights{
		FoundationWeight:  8.0,
		HiddenWeight:      -7.0,
		EmptyColumnWeight: 4.0,
		MobilityWeight:    0.5,
		StockWeight:       -0.2,
		BuriedLowWeight:   -3.0,
		RevealBonus:       3.0,
		DrawPenalty:       1.0,
		RetreatPenalty:    10.0,
		FinishBonus:       finishBonus,
	},
	End: botinternal.PhaseWeights{
		FoundationWeight:  12.0,
		EmptyColumnWeight: 1.0,
		MobilityWeight:    0.3,
		StockWeight:       -0.5,
		DrawPenalty:       0.5,
		RetreatPenalty:    15.0,
		FinishBonus:       finishBonus,
	},
	PassThreshold: -25.0,
}
