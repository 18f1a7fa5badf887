// Package replicator fans one accepted trade out to every active follower.
package replicator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/executor"
	"solana-copy-trader/internal/idhash"
	"solana-copy-trader/internal/market"
	"solana-copy-trader/internal/observability"
	"solana-copy-trader/internal/wallet"
)

// Replicator executes an accepted trade intent once per active follower.
// Followers run concurrently and independently: one follower's failure
// never aborts the others.
type Replicator struct {
	registry *wallet.Registry
	markets  market.Resolver
	exec     *executor.Executor
	logger   *log.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// Options configures a Replicator.
type Options struct {
	Registry *wallet.Registry
	Markets  market.Resolver
	Executor *executor.Executor
	Logger   *log.Logger
	Metrics  *observability.Metrics
}

// New creates a Replicator.
func New(opts Options) (*Replicator, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("follower registry is required")
	}
	if opts.Markets == nil {
		return nil, fmt.Errorf("market resolver is required")
	}
	if opts.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[replicator] ", log.LstdFlags)
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	return &Replicator{
		registry: opts.Registry,
		markets:  opts.Markets,
		exec:     opts.Executor,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      time.Now,
	}, nil
}

// Replicate runs the trade for every active follower and returns one
// result per follower, ordered by follower address. The market is
// resolved once and shared across the round.
func (r *Replicator) Replicate(ctx context.Context, intent *domain.TradeIntent) ([]domain.TradeExecutionResult, error) {
	followers, err := r.registry.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve followers: %w", err)
	}
	if len(followers) == 0 {
		r.logger.Printf("No active followers for trade %s, skipping", intent.SourceSignature)
		return nil, nil
	}

	mkt, err := r.markets.Resolve(ctx, intent.TokenIn.Mint, intent.TokenOut.Mint)
	if err != nil {
		return nil, fmt.Errorf("resolve market for %s/%s: %w", intent.TokenIn.Mint, intent.TokenOut.Mint, err)
	}

	r.logger.Printf("Replicating trade %s (%s -> %s, amount %f) to %d followers",
		intent.SourceSignature, intent.TokenIn.Mint, intent.TokenOut.Mint, intent.AmountIn(), len(followers))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []domain.TradeExecutionResult
	)

	for _, follower := range followers {
		wg.Add(1)
		go func(f wallet.Follower) {
			defer wg.Done()
			res := r.executeFor(ctx, intent, mkt, f)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(follower)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Follower < results[j].Follower
	})

	r.metrics.TradesReplicated.Inc()
	return results, nil
}

func (r *Replicator) executeFor(ctx context.Context, intent *domain.TradeIntent, mkt *market.Market, f wallet.Follower) domain.TradeExecutionResult {
	swap := r.exec.Execute(ctx, executor.SubmitRequest{
		Market:   mkt,
		Signer:   f.Signer,
		TokenIn:  intent.TokenIn.Mint,
		TokenOut: intent.TokenOut.Mint,
		AmountIn: intent.AmountIn(),
	})

	res := domain.TradeExecutionResult{
		TradeID:         idhash.ComputeTradeID(intent.SourceSignature, f.Address, intent.TokenIn.Mint, intent.TokenOut.Mint),
		Follower:        f.Address,
		SourceWallet:    intent.SourceWallet,
		SourceSignature: intent.SourceSignature,
		TokenIn:         intent.TokenIn.Mint,
		TokenOut:        intent.TokenOut.Mint,
		AmountIn:        intent.AmountIn(),
		Result:          swap,
		ExecutedAt:      r.now().UnixMilli(),
	}

	if swap.Success {
		r.metrics.SwapsExecuted.WithLabelValues(domain.TradeStatusConfirmed).Inc()
		r.metrics.SlippageUsed.Observe(swap.SlippageUsed)
	} else {
		r.metrics.SwapsExecuted.WithLabelValues(domain.TradeStatusFailed).Inc()
		r.metrics.FollowerFailures.WithLabelValues(f.Address).Inc()
		r.logger.Printf("Replication failed for follower %s on trade %s: %s", f.Address, intent.SourceSignature, swap.Failure)
	}
	return res
}
