package domain

// TokenDelta is the net balance change of one token mint within a transaction.
type TokenDelta struct {
	Mint   string  // token mint address
	Amount float64 // net change, sign depends on context
}

// TradeIntent is a reconstructed two-leg swap: the source wallet spent
// TokenIn and received TokenOut. It exists only between reconstruction
// and evaluation and is never persisted.
type TradeIntent struct {
	TokenIn         TokenDelta // spent leg, Amount = |negative change|
	TokenOut        TokenDelta // received leg, Amount = positive change
	SourceWallet    string     // monitored wallet the swap was observed on
	SourceSignature string     // signature of the observed transaction
	Slot            int64
}

// AmountIn returns the spent amount of the inbound leg.
func (t *TradeIntent) AmountIn() float64 { return t.TokenIn.Amount }

// AmountOut returns the received amount of the outbound leg.
func (t *TradeIntent) AmountOut() float64 { return t.TokenOut.Amount }
