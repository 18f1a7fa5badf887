package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/solana"
	"solana-copy-trader/internal/solana/stub"
)

// runFilter feeds notifications through a filter and collects every
// emitted activity until the output closes.
func runFilter(t *testing.T, f *Filter, notifs []solana.LogNotification) []domain.ObservedActivity {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	in := make(chan solana.LogNotification, len(notifs))
	for _, n := range notifs {
		in <- n
	}
	close(in)

	go f.Run(ctx, in)

	var out []domain.ObservedActivity
	for activity := range f.Events() {
		out = append(out, activity)
	}
	return out
}

func TestFilter_EmitsForWatchedWallet(t *testing.T) {
	registry := NewRegistry()
	watched := testAddress(t, 10)
	if err := registry.Add(watched); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	f := NewFilter(FilterOptions{Registry: registry})

	got := runFilter(t, f, []solana.LogNotification{
		{
			Signature:   "sig-1",
			Slot:        100,
			Logs:        []string{"Program log: swap"},
			AccountKeys: []string{watched, testAddress(t, 99)},
		},
	})

	if len(got) != 1 {
		t.Fatalf("emitted %d activities, want 1", len(got))
	}
	if got[0].Wallet != watched {
		t.Errorf("Wallet = %s, want %s", got[0].Wallet, watched)
	}
	if got[0].Signature != "sig-1" {
		t.Errorf("Signature = %s, want sig-1", got[0].Signature)
	}
	if got[0].Slot != 100 {
		t.Errorf("Slot = %d, want 100", got[0].Slot)
	}
}

func TestFilter_IgnoresUnwatchedWallet(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Add(testAddress(t, 11)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	f := NewFilter(FilterOptions{Registry: registry})

	got := runFilter(t, f, []solana.LogNotification{
		{Signature: "sig-1", AccountKeys: []string{testAddress(t, 12)}},
	})

	if len(got) != 0 {
		t.Errorf("emitted %d activities for an unwatched wallet, want 0", len(got))
	}
}

func TestFilter_AddThenRemoveEmitsNothing(t *testing.T) {
	registry := NewRegistry()
	addr := testAddress(t, 13)
	if err := registry.Add(addr); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	registry.Remove(addr)

	f := NewFilter(FilterOptions{Registry: registry})

	got := runFilter(t, f, []solana.LogNotification{
		{Signature: "sig-1", AccountKeys: []string{addr}},
	})

	if len(got) != 0 {
		t.Errorf("emitted %d activities after removal, want 0", len(got))
	}
}

func TestFilter_DiscardsFailedTransactions(t *testing.T) {
	registry := NewRegistry()
	addr := testAddress(t, 14)
	if err := registry.Add(addr); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	f := NewFilter(FilterOptions{Registry: registry})

	got := runFilter(t, f, []solana.LogNotification{
		{
			Signature:   "sig-failed",
			AccountKeys: []string{addr},
			Err:         map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
		},
	})

	if len(got) != 0 {
		t.Errorf("emitted %d activities for a failed transaction, want 0", len(got))
	}
}

func TestFilter_SameWalletMatchesOncePerNotification(t *testing.T) {
	registry := NewRegistry()
	addr := testAddress(t, 15)
	if err := registry.Add(addr); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	f := NewFilter(FilterOptions{Registry: registry})

	got := runFilter(t, f, []solana.LogNotification{
		{Signature: "sig-1", AccountKeys: []string{addr, addr, addr}},
	})

	if len(got) != 1 {
		t.Errorf("emitted %d activities for a wallet at multiple key positions, want 1", len(got))
	}
}

func TestFilter_MultipleWatchedWalletsOneTransaction(t *testing.T) {
	registry := NewRegistry()
	a := testAddress(t, 16)
	b := testAddress(t, 17)
	if err := registry.Add(a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := registry.Add(b); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	f := NewFilter(FilterOptions{Registry: registry})

	got := runFilter(t, f, []solana.LogNotification{
		{Signature: "sig-1", AccountKeys: []string{a, b}},
	})

	if len(got) != 2 {
		t.Fatalf("emitted %d activities, want 2 (one per watched wallet)", len(got))
	}
	wallets := map[string]bool{got[0].Wallet: true, got[1].Wallet: true}
	if !wallets[a] || !wallets[b] {
		t.Errorf("emitted wallets %v, want both %s and %s", wallets, a, b)
	}
}

func TestFilter_BlocksProducerUntilConsumerDrains(t *testing.T) {
	registry := NewRegistry()
	addr := testAddress(t, 20)
	if err := registry.Add(addr); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	f := NewFilter(FilterOptions{Registry: registry, Buffer: 1})

	in := make(chan solana.LogNotification, 3)
	for i := 0; i < 3; i++ {
		in <- solana.LogNotification{
			Signature:   fmt.Sprintf("sig-%d", i),
			AccountKeys: []string{addr},
		}
	}
	close(in)

	done := make(chan struct{})
	go func() {
		f.Run(context.Background(), in)
		close(done)
	}()

	// One buffer slot and no consumer: Run must stall on the second
	// emission rather than drop it or return early.
	select {
	case <-done:
		t.Fatal("Run returned with an undrained output channel")
	case <-time.After(100 * time.Millisecond):
	}

	var got []domain.ObservedActivity
	for activity := range f.Events() {
		got = append(got, activity)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the output was drained")
	}

	if len(got) != 3 {
		t.Fatalf("drained %d activities, want all 3 with none dropped", len(got))
	}
	for i, activity := range got {
		if want := fmt.Sprintf("sig-%d", i); activity.Signature != want {
			t.Errorf("activity %d = %s, want %s (emission order preserved)", i, activity.Signature, want)
		}
	}
}

func TestFilter_FetchesAccountKeysWhenMissing(t *testing.T) {
	registry := NewRegistry()
	addr := testAddress(t, 18)
	if err := registry.Add(addr); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	rpc := stub.NewRPCClient()
	rpc.AddTransaction(&solana.Transaction{
		Signature: "sig-fetch",
		Slot:      200,
		Message:   &solana.TransactionMessage{AccountKeys: []string{addr}},
	})

	f := NewFilter(FilterOptions{Registry: registry, RPC: rpc})

	got := runFilter(t, f, []solana.LogNotification{
		{Signature: "sig-fetch", Slot: 200},
	})

	if len(got) != 1 {
		t.Fatalf("emitted %d activities, want 1 via account key fetch", len(got))
	}
	if got[0].Wallet != addr {
		t.Errorf("Wallet = %s, want %s", got[0].Wallet, addr)
	}
}

func TestFilter_DropsWhenAccountKeysUnavailable(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Add(testAddress(t, 19)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// RPC has no record of the signature: GetTransaction returns (nil, nil).
	f := NewFilter(FilterOptions{Registry: registry, RPC: stub.NewRPCClient()})

	got := runFilter(t, f, []solana.LogNotification{
		{Signature: "sig-unknown"},
	})

	if len(got) != 0 {
		t.Errorf("emitted %d activities without account keys, want 0", len(got))
	}
}
