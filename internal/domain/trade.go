package domain

// Trade record status constants.
const (
	TradeStatusConfirmed = "confirmed"
	TradeStatusFailed    = "failed"
)

// TradeExecutionResult is the aggregated outcome of one follower within
// one replication round. One is produced per follower regardless of outcome.
type TradeExecutionResult struct {
	TradeID         string // deterministic hash, see idhash
	Follower        string // follower wallet address
	SourceWallet    string // monitored wallet the trade was copied from
	SourceSignature string // signature of the observed transaction
	TokenIn         string // mint spent
	TokenOut        string // mint received
	AmountIn        float64
	Result          SwapResult
	ExecutedAt      int64 // Unix timestamp in milliseconds
}

// Status maps the swap outcome to a trade record status.
func (r *TradeExecutionResult) Status() string {
	if r.Result.Success {
		return TradeStatusConfirmed
	}
	return TradeStatusFailed
}

// TradeRecord is the persisted form of a TradeExecutionResult.
// Corresponds to trade_records table in PostgreSQL.
type TradeRecord struct {
	TradeID         string // deterministic hash, primary key
	Follower        string // follower wallet address
	SourceWallet    string
	SourceSignature string
	TokenIn         string
	TokenOut        string
	AmountIn        float64
	Signature       string  // confirmed swap signature, empty on failure
	SlippageUsed    float64 // slippage of the final attempt, percent
	Status          string  // "confirmed" | "failed"
	FailureReason   string  // empty on success
	AttemptCount    int
	CreatedAt       int64 // Unix timestamp in milliseconds
}
