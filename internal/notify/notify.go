// Package notify delivers trade outcome notifications to the operator.
package notify

import (
	"context"
	"fmt"
	"log"

	"solana-copy-trader/internal/domain"
)

// Notifier receives the outcome of one replication round. Delivery is
// best effort: the trading loop logs notifier errors and moves on.
type Notifier interface {
	NotifyTrade(ctx context.Context, results []domain.TradeExecutionResult) error
}

// LogNotifier writes trade outcomes to the process log.
type LogNotifier struct {
	logger *log.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(log.Writer(), "[notify] ", log.LstdFlags)
	}
	return &LogNotifier{logger: logger}
}

// NotifyTrade logs one line per follower result.
func (n *LogNotifier) NotifyTrade(_ context.Context, results []domain.TradeExecutionResult) error {
	for i := range results {
		res := &results[i]
		if res.Result.Success {
			n.logger.Printf("Trade %s: follower %s confirmed %s at %.1f%% slippage (%d attempts)",
				res.SourceSignature, res.Follower, res.Result.Signature, res.Result.SlippageUsed, len(res.Result.Attempts))
		} else {
			n.logger.Printf("Trade %s: follower %s failed after %d attempts: %s",
				res.SourceSignature, res.Follower, len(res.Result.Attempts), res.Result.Failure)
		}
	}
	return nil
}

// Multi fans a notification out to several notifiers, returning the
// first error after attempting all of them.
type Multi []Notifier

var _ Notifier = (Multi)(nil)

// NotifyTrade delivers to every notifier.
func (m Multi) NotifyTrade(ctx context.Context, results []domain.TradeExecutionResult) error {
	var firstErr error
	for _, n := range m {
		if err := n.NotifyTrade(ctx, results); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("notify: %w", err)
		}
	}
	return firstErr
}
