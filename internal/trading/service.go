// Package trading drives the event-to-execution pipeline: it consumes
// monitored-wallet activity, reconstructs and evaluates the observed
// swap, replicates accepted trades, and persists the outcomes.
package trading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"solana-copy-trader/internal/decision"
	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/notify"
	"solana-copy-trader/internal/observability"
	"solana-copy-trader/internal/replicator"
	"solana-copy-trader/internal/solana"
	"solana-copy-trader/internal/storage"
)

// Service consumes observed activity and turns accepted swaps into
// replicated trades. One goroutine is spawned per activity so a slow
// replication round never stalls the monitor.
type Service struct {
	rpc        solana.RPCClient
	events     <-chan domain.ObservedActivity
	evaluator  *decision.Evaluator
	replicator *replicator.Replicator
	trades     storage.TradeRecordStore
	attempts   storage.AttemptLogStore
	notifier   notify.Notifier
	logger     *log.Logger
	metrics    *observability.Metrics
	now        func() time.Time

	active atomic.Bool

	mu   sync.Mutex
	seen map[string]struct{} // source signatures already dispatched

	wg sync.WaitGroup
}

// Options configures a Service.
type Options struct {
	RPC        solana.RPCClient
	Events     <-chan domain.ObservedActivity
	Evaluator  *decision.Evaluator
	Replicator *replicator.Replicator
	Trades     storage.TradeRecordStore
	Attempts   storage.AttemptLogStore
	Notifier   notify.Notifier
	Logger     *log.Logger
	Metrics    *observability.Metrics
}

// New creates a trading Service. The service starts active.
func New(opts Options) (*Service, error) {
	if opts.RPC == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if opts.Events == nil {
		return nil, fmt.Errorf("event channel is required")
	}
	if opts.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if opts.Replicator == nil {
		return nil, fmt.Errorf("replicator is required")
	}
	if opts.Trades == nil {
		return nil, fmt.Errorf("trade record store is required")
	}
	if opts.Attempts == nil {
		return nil, fmt.Errorf("attempt log store is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLogNotifier(nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[trading] ", log.LstdFlags)
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}

	s := &Service{
		rpc:        opts.RPC,
		events:     opts.Events,
		evaluator:  opts.Evaluator,
		replicator: opts.Replicator,
		trades:     opts.Trades,
		attempts:   opts.Attempts,
		notifier:   opts.Notifier,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		now:        time.Now,
		seen:       make(map[string]struct{}),
	}
	s.active.Store(true)
	s.metrics.BotActive.Set(1)
	return s, nil
}

// SetActive toggles copy trading. While paused the service keeps
// draining events but replicates nothing.
func (s *Service) SetActive(active bool) {
	s.active.Store(active)
	if active {
		s.metrics.BotActive.Set(1)
		s.logger.Printf("Copy trading enabled")
	} else {
		s.metrics.BotActive.Set(0)
		s.logger.Printf("Copy trading paused")
	}
}

// Active reports whether copy trading is enabled.
func (s *Service) Active() bool {
	return s.active.Load()
}

// Run consumes the event channel until it closes or ctx is cancelled,
// then waits for in-flight rounds to finish.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Printf("Trading service started")
	defer s.logger.Printf("Trading service stopped")

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case activity, ok := <-s.events:
			if !ok {
				s.wg.Wait()
				return nil
			}
			s.metrics.LastActivitySeen.Set(float64(s.now().Unix()))

			if !s.active.Load() {
				continue
			}
			if !s.markSeen(activity.Signature) {
				continue
			}

			s.wg.Add(1)
			go func(a domain.ObservedActivity) {
				defer s.wg.Done()
				if err := s.handle(ctx, a); err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Printf("Failed to handle activity %s: %v", a.Signature, err)
				}
			}(activity)
		}
	}
}

// markSeen records the signature and reports whether it was new.
func (s *Service) markSeen(signature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[signature]; ok {
		return false
	}
	s.seen[signature] = struct{}{}
	return true
}

func (s *Service) handle(ctx context.Context, activity domain.ObservedActivity) error {
	start := s.now()

	tx, err := s.rpc.GetTransaction(ctx, activity.Signature)
	if err != nil {
		return fmt.Errorf("fetch transaction: %w", err)
	}
	if tx == nil {
		s.metrics.IntentsSkipped.WithLabelValues("not_found").Inc()
		return nil
	}
	if tx.Meta != nil && tx.Meta.Err != nil {
		s.metrics.IntentsSkipped.WithLabelValues("tx_error").Inc()
		return nil
	}

	intent := decision.Reconstruct(tx, activity.Wallet)
	if intent == nil {
		s.metrics.IntentsSkipped.WithLabelValues("no_swap").Inc()
		return nil
	}
	s.metrics.IntentsReconstructed.Inc()

	if !s.evaluator.Evaluate(intent.AmountIn(), intent.AmountOut()) {
		s.metrics.TradesRejected.Inc()
		s.logger.Printf("Trade %s rejected: %f -> %f below threshold",
			intent.SourceSignature, intent.AmountIn(), intent.AmountOut())
		return nil
	}
	s.metrics.TradesAccepted.Inc()

	results, err := s.replicator.Replicate(ctx, intent)
	if err != nil {
		return fmt.Errorf("replicate: %w", err)
	}
	if len(results) == 0 {
		return nil
	}

	s.persist(ctx, results)
	s.metrics.LastTradeExecuted.Set(float64(s.now().Unix()))
	s.metrics.ExecutionDuration.Observe(s.now().Sub(start).Seconds())

	if err := s.notifier.NotifyTrade(ctx, results); err != nil {
		s.logger.Printf("Notification failed for trade %s: %v", intent.SourceSignature, err)
	}
	return nil
}

// persist writes one trade record per follower and the full attempt
// history. A duplicate trade_id means the round was already recorded;
// the insert is skipped, not retried.
func (s *Service) persist(ctx context.Context, results []domain.TradeExecutionResult) {
	var entries []*storage.AttemptLogEntry

	for i := range results {
		res := &results[i]
		rec := recordFromResult(res)

		if err := s.trades.Insert(ctx, rec); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				s.logger.Printf("Trade %s for %s already recorded, skipping", rec.TradeID, rec.Follower)
				continue
			}
			s.logger.Printf("Failed to store trade %s: %v", rec.TradeID, err)
			continue
		}

		for seq, attempt := range res.Result.Attempts {
			entries = append(entries, &storage.AttemptLogEntry{
				TradeID:     res.TradeID,
				Follower:    res.Follower,
				TokenIn:     res.TokenIn,
				TokenOut:    res.TokenOut,
				AmountIn:    res.AmountIn,
				AttemptSeq:  seq,
				Slippage:    attempt.Slippage,
				Signature:   attempt.Signature,
				Failure:     attempt.Failure,
				TimestampMs: res.ExecutedAt,
			})
		}
	}

	if len(entries) == 0 {
		return
	}
	if err := s.attempts.InsertBulk(ctx, entries); err != nil {
		s.logger.Printf("Failed to store %d attempt rows: %v", len(entries), err)
	}
}

func recordFromResult(res *domain.TradeExecutionResult) *domain.TradeRecord {
	return &domain.TradeRecord{
		TradeID:         res.TradeID,
		Follower:        res.Follower,
		SourceWallet:    res.SourceWallet,
		SourceSignature: res.SourceSignature,
		TokenIn:         res.TokenIn,
		TokenOut:        res.TokenOut,
		AmountIn:        res.AmountIn,
		Signature:       res.Result.Signature,
		SlippageUsed:    res.Result.SlippageUsed,
		Status:          res.Status(),
		FailureReason:   res.Result.Failure,
		AttemptCount:    len(res.Result.Attempts),
		CreatedAt:       res.ExecutedAt,
	}
}
