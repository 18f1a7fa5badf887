// Package executor runs swaps with a slippage-escalating retry ladder.
package executor

import (
	"context"
	"fmt"
	"log"
	"math"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/market"
	"solana-copy-trader/internal/observability"
	"solana-copy-trader/internal/wallet"
)

// Default retry ladder bounds, in percent.
const (
	DefaultInitialSlippage = 0.5
	DefaultSlippageStep    = 0.5
	DefaultMaxSlippage     = 5.0
)

// SubmitRequest describes one swap attempt for a follower wallet.
type SubmitRequest struct {
	Market      *market.Market
	Signer      wallet.Signer
	TokenIn     string
	TokenOut    string
	AmountIn    float64
	SlippagePct float64
}

// Submitter submits a single swap attempt and blocks until the
// transaction confirms or fails. It returns the confirmed signature.
type Submitter interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
}

// Executor retries a swap at widening slippage bounds until it confirms,
// a non-slippage error occurs, or the ceiling is exhausted.
type Executor struct {
	submitter Submitter
	initial   float64
	step      float64
	max       float64
	logger    *log.Logger
	metrics   *observability.Metrics
}

// Options configures an Executor. Zero slippage fields take the
// package defaults.
type Options struct {
	Submitter       Submitter
	InitialSlippage float64
	SlippageStep    float64
	MaxSlippage     float64
	Logger          *log.Logger
	Metrics         *observability.Metrics
}

// New creates an Executor.
func New(opts Options) (*Executor, error) {
	if opts.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	if opts.InitialSlippage == 0 {
		opts.InitialSlippage = DefaultInitialSlippage
	}
	if opts.SlippageStep == 0 {
		opts.SlippageStep = DefaultSlippageStep
	}
	if opts.MaxSlippage == 0 {
		opts.MaxSlippage = DefaultMaxSlippage
	}
	if opts.InitialSlippage <= 0 || opts.SlippageStep <= 0 {
		return nil, fmt.Errorf("slippage ladder must be positive: initial=%f step=%f", opts.InitialSlippage, opts.SlippageStep)
	}
	if opts.MaxSlippage < opts.InitialSlippage {
		return nil, fmt.Errorf("max slippage %f below initial %f", opts.MaxSlippage, opts.InitialSlippage)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[executor] ", log.LstdFlags)
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	return &Executor{
		submitter: opts.Submitter,
		initial:   opts.InitialSlippage,
		step:      opts.SlippageStep,
		max:       opts.MaxSlippage,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}, nil
}

// ladder returns the slippage bound of each attempt, initial through the
// ceiling inclusive. Attempts are counted rather than accumulated so
// float error cannot drop or duplicate a rung.
func (e *Executor) ladder() []float64 {
	n := int(math.Floor((e.max-e.initial)/e.step+1e-9)) + 1
	rungs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		rungs = append(rungs, e.initial+e.step*float64(i))
	}
	return rungs
}

// Execute runs the retry ladder for one follower. Slippage rejections
// move to the next rung; any other submission error is terminal. The
// returned result always carries the full attempt history, including
// when the context is cancelled between attempts.
func (e *Executor) Execute(ctx context.Context, req SubmitRequest) domain.SwapResult {
	result := domain.SwapResult{}

	for _, slippage := range e.ladder() {
		// Cancellation between rungs keeps the last completed attempt's
		// state; SlippageUsed never reports a rung that was not tried.
		if err := ctx.Err(); err != nil {
			result.Failure = err.Error()
			return result
		}

		req.SlippagePct = slippage
		sig, err := e.submitter.Submit(ctx, req)
		if err == nil {
			result.Attempts = append(result.Attempts, domain.SwapAttempt{
				Slippage:  slippage,
				Signature: sig,
			})
			result.Success = true
			result.Signature = sig
			result.SlippageUsed = slippage
			e.metrics.SwapAttempts.WithLabelValues("confirmed").Inc()
			e.logger.Printf("Swap confirmed for %s at %.1f%% slippage: %s", req.Signer.PublicKey(), slippage, sig)
			return result
		}

		result.Attempts = append(result.Attempts, domain.SwapAttempt{
			Slippage: slippage,
			Failure:  err.Error(),
		})
		result.SlippageUsed = slippage

		if !IsSlippageExceeded(err) {
			result.Failure = err.Error()
			e.metrics.SwapAttempts.WithLabelValues("failed").Inc()
			e.logger.Printf("Swap failed for %s at %.1f%% slippage: %v", req.Signer.PublicKey(), slippage, err)
			return result
		}

		e.metrics.SwapAttempts.WithLabelValues("slippage").Inc()
		e.logger.Printf("Slippage exceeded for %s at %.1f%%, retrying wider", req.Signer.PublicKey(), slippage)
	}

	result.Failure = domain.FailureMaxSlippage
	e.logger.Printf("Swap abandoned for %s: ceiling %.1f%% exhausted after %d attempts",
		req.Signer.PublicKey(), e.max, len(result.Attempts))
	return result
}
