// Package decision reconstructs trade intents from transaction records
// and decides whether they are worth copying.
package decision

import (
	"math"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/solana"
)

// Reconstruct computes per-token balance deltas from a transaction's
// pre/post token balance tables and classifies them into a two-leg swap.
//
// Entries are joined on the account position index; a post entry with no
// matching pre entry counts from zero. A transaction is swap-like iff
// exactly one token shows a net negative change and exactly one a net
// positive change; anything else returns nil. Ambiguous transactions
// are discarded, never guessed at.
//
// Pure function: no I/O, total over its input.
func Reconstruct(tx *solana.Transaction, sourceWallet string) *domain.TradeIntent {
	if tx == nil || tx.Meta == nil {
		return nil
	}

	pre := make(map[int]solana.TokenBalance, len(tx.Meta.PreTokenBalances))
	for _, b := range tx.Meta.PreTokenBalances {
		pre[b.AccountIndex] = b
	}

	var negative, positive []domain.TokenDelta
	for _, post := range tx.Meta.PostTokenBalances {
		var preAmount float64
		if p, ok := pre[post.AccountIndex]; ok {
			preAmount = p.Amount
		}

		change := post.Amount - preAmount
		switch {
		case change < 0:
			negative = append(negative, domain.TokenDelta{Mint: post.Mint, Amount: change})
		case change > 0:
			positive = append(positive, domain.TokenDelta{Mint: post.Mint, Amount: change})
		}
	}

	if len(negative) != 1 || len(positive) != 1 {
		return nil
	}

	return &domain.TradeIntent{
		TokenIn: domain.TokenDelta{
			Mint:   negative[0].Mint,
			Amount: math.Abs(negative[0].Amount),
		},
		TokenOut:        positive[0],
		SourceWallet:    sourceWallet,
		SourceSignature: tx.Signature,
		Slot:            tx.Slot,
	}
}
