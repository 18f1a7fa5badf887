package domain

// Failure reasons produced by the swap executor.
const (
	FailureMaxSlippage = "max slippage exceeded"
)

// SwapAttempt is one iteration of the executor retry loop.
// An attempt succeeded iff Failure is empty.
type SwapAttempt struct {
	Slippage  float64 // slippage tolerance used for this attempt, percent
	Signature string  // confirmed transaction signature on success
	Failure   string  // failure reason, empty on success
}

// Succeeded reports whether the attempt confirmed on chain.
func (a SwapAttempt) Succeeded() bool { return a.Failure == "" }

// SwapResult is the terminal outcome of one executor invocation.
// The last attempt in Attempts is the authoritative result.
type SwapResult struct {
	Success      bool
	Signature    string  // signature of the confirmed swap, empty on failure
	SlippageUsed float64 // slippage of the final attempt
	Failure      string  // terminal failure reason, empty on success
	Attempts     []SwapAttempt
}
