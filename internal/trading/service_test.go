package trading

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"

	"solana-copy-trader/internal/decision"
	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/executor"
	"solana-copy-trader/internal/market"
	"solana-copy-trader/internal/replicator"
	"solana-copy-trader/internal/solana"
	"solana-copy-trader/internal/solana/stub"
	"solana-copy-trader/internal/storage/memory"
	"solana-copy-trader/internal/wallet"
)

type fixedResolver struct{ market *market.Market }

func (r *fixedResolver) Resolve(_ context.Context, _, _ string) (*market.Market, error) {
	return r.market, nil
}

type okSubmitter struct{}

func (okSubmitter) Submit(_ context.Context, req executor.SubmitRequest) (string, error) {
	return "copy-sig-" + req.Signer.PublicKey()[:8], nil
}

type capturingNotifier struct {
	mu     sync.Mutex
	rounds [][]domain.TradeExecutionResult
}

func (n *capturingNotifier) NotifyTrade(_ context.Context, results []domain.TradeExecutionResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rounds = append(n.rounds, results)
	return nil
}

func (n *capturingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.rounds)
}

// testHarness wires a service over in-memory stores with one follower.
type testHarness struct {
	rpc      *stub.RPCClient
	events   chan domain.ObservedActivity
	trades   *memory.TradeRecordStore
	attempts *memory.AttemptLogStore
	notifier *capturingNotifier
	service  *Service
	follower string
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	walletStore := memory.NewWalletStore()
	registry := wallet.NewRegistry(walletStore)

	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 9
	priv := ed25519.NewKeyFromSeed(seed)
	kp, err := wallet.KeypairFromBase58(base58.Encode(priv))
	if err != nil {
		t.Fatalf("KeypairFromBase58 failed: %v", err)
	}
	now := time.Now().UnixMilli()
	if err := walletStore.Insert(context.Background(), &domain.WalletRecord{
		Address:   kp.PublicKey(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := registry.RegisterSigner(kp.PublicKey(), kp); err != nil {
		t.Fatalf("RegisterSigner failed: %v", err)
	}

	exec, err := executor.New(executor.Options{Submitter: okSubmitter{}})
	if err != nil {
		t.Fatalf("executor.New failed: %v", err)
	}
	repl, err := replicator.New(replicator.Options{
		Registry: registry,
		Markets:  &fixedResolver{market: &market.Market{Address: "pool", BaseDecimals: 9}},
		Executor: exec,
	})
	if err != nil {
		t.Fatalf("replicator.New failed: %v", err)
	}

	h := &testHarness{
		rpc:      stub.NewRPCClient(),
		events:   make(chan domain.ObservedActivity, 16),
		trades:   memory.NewTradeRecordStore(),
		attempts: memory.NewAttemptLogStore(),
		notifier: &capturingNotifier{},
		follower: kp.PublicKey(),
	}

	svc, err := New(Options{
		RPC:        h.rpc,
		Events:     h.events,
		Evaluator:  decision.NewEvaluator(decision.DefaultMinProfitPct),
		Replicator: repl,
		Trades:     h.trades,
		Attempts:   h.attempts,
		Notifier:   h.notifier,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.service = svc
	return h
}

// run pushes the activities through the service and blocks until the
// event stream is drained and all rounds complete.
func (h *testHarness) run(t *testing.T, activities ...domain.ObservedActivity) {
	t.Helper()

	for _, a := range activities {
		h.events <- a
	}
	close(h.events)

	done := make(chan error, 1)
	go func() { done <- h.service.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not drain the event stream")
	}
}

// profitableTx is a two-leg swap gaining 5 percent on the raw amounts.
func profitableTx(signature string) *solana.Transaction {
	return &solana.Transaction{
		Slot:      700,
		Signature: signature,
		Meta: &solana.TransactionMeta{
			PreTokenBalances: []solana.TokenBalance{
				{AccountIndex: 1, Mint: "mint-in", Amount: 100},
			},
			PostTokenBalances: []solana.TokenBalance{
				{AccountIndex: 1, Mint: "mint-in", Amount: 0},
				{AccountIndex: 2, Mint: "mint-out", Amount: 105},
			},
		},
	}
}

func TestService_ReplicatesProfitableTrade(t *testing.T) {
	h := newHarness(t)
	h.rpc.AddTransaction(profitableTx("sig-profit"))

	h.run(t, domain.ObservedActivity{Signature: "sig-profit", Wallet: "source-wallet", Slot: 700})

	records, err := h.trades.GetBySourceSignature(context.Background(), "sig-profit")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d trade records, want 1", len(records))
	}

	rec := records[0]
	if rec.Follower != h.follower {
		t.Errorf("Follower = %s, want %s", rec.Follower, h.follower)
	}
	if rec.Status != domain.TradeStatusConfirmed {
		t.Errorf("Status = %s, want confirmed", rec.Status)
	}
	if rec.TokenIn != "mint-in" || rec.TokenOut != "mint-out" {
		t.Errorf("pair = %s/%s, want mint-in/mint-out", rec.TokenIn, rec.TokenOut)
	}
	if rec.AmountIn != 100 {
		t.Errorf("AmountIn = %f, want 100", rec.AmountIn)
	}
	if rec.AttemptCount != 1 {
		t.Errorf("AttemptCount = %d, want 1", rec.AttemptCount)
	}

	attempts := h.attempts.All()
	if len(attempts) != 1 {
		t.Fatalf("stored %d attempt rows, want 1", len(attempts))
	}
	if attempts[0].TradeID != rec.TradeID {
		t.Errorf("attempt TradeID = %s, want %s", attempts[0].TradeID, rec.TradeID)
	}

	if h.notifier.count() != 1 {
		t.Errorf("got %d notifications, want 1", h.notifier.count())
	}
}

func TestService_RejectsUnprofitableTrade(t *testing.T) {
	h := newHarness(t)
	h.rpc.AddTransaction(&solana.Transaction{
		Slot:      700,
		Signature: "sig-thin",
		Meta: &solana.TransactionMeta{
			PreTokenBalances: []solana.TokenBalance{
				{AccountIndex: 1, Mint: "mint-in", Amount: 100},
			},
			PostTokenBalances: []solana.TokenBalance{
				{AccountIndex: 1, Mint: "mint-in", Amount: 0},
				{AccountIndex: 2, Mint: "mint-out", Amount: 101},
			},
		},
	})

	h.run(t, domain.ObservedActivity{Signature: "sig-thin", Wallet: "source-wallet"})

	records, err := h.trades.GetBySourceSignature(context.Background(), "sig-thin")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("stored %d records for a 1%% gain, want 0", len(records))
	}
	if h.notifier.count() != 0 {
		t.Errorf("got %d notifications, want 0", h.notifier.count())
	}
}

func TestService_DeduplicatesBySignature(t *testing.T) {
	h := newHarness(t)
	h.rpc.AddTransaction(profitableTx("sig-dup"))

	activity := domain.ObservedActivity{Signature: "sig-dup", Wallet: "source-wallet"}
	h.run(t, activity, activity, activity)

	records, err := h.trades.GetBySourceSignature(context.Background(), "sig-dup")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("stored %d records for a repeated signature, want 1", len(records))
	}
	if h.notifier.count() != 1 {
		t.Errorf("got %d notifications, want 1", h.notifier.count())
	}
}

func TestService_PausedReplicatesNothing(t *testing.T) {
	h := newHarness(t)
	h.rpc.AddTransaction(profitableTx("sig-paused"))
	h.service.SetActive(false)

	h.run(t, domain.ObservedActivity{Signature: "sig-paused", Wallet: "source-wallet"})

	records, err := h.trades.GetBySourceSignature(context.Background(), "sig-paused")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("paused service stored %d records, want 0", len(records))
	}
}

func TestService_SkipsNonSwapTransactions(t *testing.T) {
	h := newHarness(t)
	h.rpc.AddTransaction(&solana.Transaction{
		Slot:      700,
		Signature: "sig-transfer",
		Meta: &solana.TransactionMeta{
			PreTokenBalances: []solana.TokenBalance{
				{AccountIndex: 1, Mint: "mint-in", Amount: 100},
			},
			PostTokenBalances: []solana.TokenBalance{
				{AccountIndex: 1, Mint: "mint-in", Amount: 60},
			},
		},
	})

	h.run(t, domain.ObservedActivity{Signature: "sig-transfer", Wallet: "source-wallet"})

	records, err := h.trades.GetBySourceSignature(context.Background(), "sig-transfer")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("stored %d records for a transfer, want 0", len(records))
	}
}

func TestService_SkipsFailedTransactions(t *testing.T) {
	h := newHarness(t)
	tx := profitableTx("sig-chain-err")
	tx.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}
	h.rpc.AddTransaction(tx)

	h.run(t, domain.ObservedActivity{Signature: "sig-chain-err", Wallet: "source-wallet"})

	records, err := h.trades.GetBySourceSignature(context.Background(), "sig-chain-err")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("stored %d records for a failed transaction, want 0", len(records))
	}
}
