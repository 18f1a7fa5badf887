package decision

// DefaultMinProfitPct is the default profitability threshold, percent.
const DefaultMinProfitPct = 2.0

// Evaluator applies the profitability threshold to a reconstructed swap.
// The heuristic compares raw token amounts across legs without price
// normalization, matching the observed trader's behavior.
type Evaluator struct {
	// MinProfitPct is the minimum percentage gain to copy a trade.
	MinProfitPct float64
}

// NewEvaluator creates an evaluator with the given threshold.
// A zero or negative threshold falls back to the default.
func NewEvaluator(minProfitPct float64) *Evaluator {
	if minProfitPct <= 0 {
		minProfitPct = DefaultMinProfitPct
	}
	return &Evaluator{MinProfitPct: minProfitPct}
}

// Evaluate reports whether the amount gained across the swap meets the
// threshold: (amountOut - amountIn) / amountIn * 100 >= MinProfitPct.
// A zero inbound leg is not a comparable trade and is never profitable.
func (e *Evaluator) Evaluate(amountIn, amountOut float64) bool {
	if amountIn == 0 {
		return false
	}
	pctGain := (amountOut - amountIn) / amountIn * 100
	return pctGain >= e.MinProfitPct
}
