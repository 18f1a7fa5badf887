package monitor

import (
	"context"
	"log"
	"time"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/observability"
	"solana-copy-trader/internal/solana"
)

const (
	maxFetchRetries = 3
	baseFetchDelay  = 500 * time.Millisecond
)

// Filter consumes the full log notification stream, matches each
// notification against the registry, and emits one ObservedActivity per
// matched wallet.
//
// Involved accounts are the decoded transaction account keys: the keys
// carried on the notification when the provider includes them, otherwise
// fetched via getTransaction with bounded retry. Notifications flagged
// with an execution error are discarded before filtering, since a
// failed transaction cannot be profitably copied.
//
// Backpressure policy: the output channel is bounded and the filter
// blocks the producer side until the consumer drains. Events are never
// dropped past the err-flag and membership checks.
type Filter struct {
	registry *Registry
	rpc      solana.RPCClient
	metrics  *observability.Metrics
	logger   *log.Logger

	out chan domain.ObservedActivity
}

// FilterOptions configures a Filter.
type FilterOptions struct {
	Registry *Registry
	RPC      solana.RPCClient // account key fallback, may be nil
	Metrics  *observability.Metrics
	Logger   *log.Logger
	// Buffer is the output channel capacity. Defaults to 256.
	Buffer int
}

// NewFilter creates a new event filter.
func NewFilter(opts FilterOptions) *Filter {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 256
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Filter{
		registry: opts.Registry,
		rpc:      opts.RPC,
		metrics:  opts.Metrics,
		logger:   logger,
		out:      make(chan domain.ObservedActivity, buffer),
	}
}

// Events returns the activity stream. Closed when Run returns.
func (f *Filter) Events() <-chan domain.ObservedActivity {
	return f.out
}

// Run processes notifications until the input channel closes or the
// context is cancelled. It closes the output channel on return.
func (f *Filter) Run(ctx context.Context, in <-chan solana.LogNotification) {
	defer close(f.out)

	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-in:
			if !ok {
				return
			}
			f.process(ctx, notif)
		}
	}
}

// process matches one notification against the registry snapshot.
func (f *Filter) process(ctx context.Context, notif solana.LogNotification) {
	if f.metrics != nil {
		f.metrics.NotificationsSeen.Inc()
	}

	// Failed transactions are discarded before filtering
	if notif.Err != nil {
		if f.metrics != nil {
			f.metrics.NotificationsDiscarded.WithLabelValues("tx_error").Inc()
		}
		return
	}

	keys := notif.AccountKeys
	if len(keys) == 0 {
		tx, err := f.fetchTransaction(ctx, notif.Signature)
		if err != nil || tx == nil || tx.Message == nil {
			if f.metrics != nil {
				f.metrics.NotificationsDiscarded.WithLabelValues("no_account_keys").Inc()
			}
			f.logger.Printf("[filter] no account keys for %s, dropping: %v", notif.Signature, err)
			return
		}
		keys = tx.Message.AccountKeys
	}

	snapshot := f.registry.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	// One event per matched wallet; the same wallet appearing at several
	// key positions within one notification matches once.
	emitted := make(map[string]struct{})
	for _, key := range keys {
		if _, watched := snapshot[key]; !watched {
			continue
		}
		if _, dup := emitted[key]; dup {
			continue
		}
		emitted[key] = struct{}{}

		activity := domain.ObservedActivity{
			Signature: notif.Signature,
			Wallet:    key,
			Slot:      notif.Slot,
			RawLogs:   notif.Logs,
		}

		select {
		case f.out <- activity:
			if f.metrics != nil {
				f.metrics.ActivityEmitted.Inc()
			}
		case <-ctx.Done():
			return
		}
	}
}

// fetchTransaction retrieves account keys with exponential backoff retry.
func (f *Filter) fetchTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	if f.rpc == nil {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxFetchRetries; attempt++ {
		tx, err := f.rpc.GetTransaction(ctx, signature)
		if err == nil {
			return tx, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// 500ms, 1s, 2s
		delay := baseFetchDelay * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
