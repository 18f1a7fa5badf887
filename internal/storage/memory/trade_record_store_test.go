package memory

import (
	"context"
	"errors"
	"testing"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/storage"
)

func tradeRecord(tradeID, follower, sourceSig string, createdAt int64) *domain.TradeRecord {
	return &domain.TradeRecord{
		TradeID:         tradeID,
		Follower:        follower,
		SourceWallet:    "source",
		SourceSignature: sourceSig,
		TokenIn:         "mint-in",
		TokenOut:        "mint-out",
		AmountIn:        10,
		Signature:       "copy-sig",
		SlippageUsed:    1.0,
		Status:          domain.TradeStatusConfirmed,
		AttemptCount:    2,
		CreatedAt:       createdAt,
	}
}

func TestTradeRecordStore_InsertAndGet(t *testing.T) {
	store := NewTradeRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, tradeRecord("trade1", "f1", "sig1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "trade1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Follower != "f1" {
		t.Errorf("Follower = %s, want f1", got.Follower)
	}
	if got.Status != domain.TradeStatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}
}

func TestTradeRecordStore_DuplicateKey(t *testing.T) {
	store := NewTradeRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, tradeRecord("trade1", "f1", "sig1", 1000)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, tradeRecord("trade1", "f1", "sig1", 2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeRecordStore_NotFound(t *testing.T) {
	store := NewTradeRecordStore()
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTradeRecordStore_GetByFollower(t *testing.T) {
	store := NewTradeRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, tradeRecord("t1", "f1", "sig1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, tradeRecord("t2", "f2", "sig1", 2000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, tradeRecord("t3", "f1", "sig2", 3000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByFollower(ctx, "f1")
	if err != nil {
		t.Fatalf("GetByFollower failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetByFollower returned %d, want 2", len(got))
	}
	if got[0].TradeID != "t1" || got[1].TradeID != "t3" {
		t.Errorf("order = %s, %s, want t1, t3", got[0].TradeID, got[1].TradeID)
	}
}

func TestTradeRecordStore_GetBySourceSignature(t *testing.T) {
	store := NewTradeRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, tradeRecord("t1", "f1", "sig1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, tradeRecord("t2", "f2", "sig1", 2000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, tradeRecord("t3", "f1", "sig2", 3000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetBySourceSignature(ctx, "sig1")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetBySourceSignature returned %d, want 2", len(got))
	}

	empty, err := store.GetBySourceSignature(ctx, "sig-none")
	if err != nil {
		t.Fatalf("GetBySourceSignature failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetBySourceSignature returned %d for an unknown signature, want 0", len(empty))
	}
}

func TestAttemptLogStore_InsertBulk(t *testing.T) {
	store := NewAttemptLogStore()
	ctx := context.Background()

	entries := []*storage.AttemptLogEntry{
		{TradeID: "t1", Follower: "f1", AttemptSeq: 0, Slippage: 0.5, Failure: "slippage"},
		{TradeID: "t1", Follower: "f1", AttemptSeq: 1, Slippage: 1.0, Signature: "copy-sig"},
	}

	if err := store.InsertBulk(ctx, entries); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all := store.All()
	if len(all) != 2 {
		t.Fatalf("All returned %d, want 2", len(all))
	}
	if all[0].AttemptSeq != 0 || all[1].AttemptSeq != 1 {
		t.Error("entries not in insertion order")
	}

	// Empty batch is a no-op
	if err := store.InsertBulk(ctx, nil); err != nil {
		t.Errorf("empty InsertBulk failed: %v", err)
	}

	// Nil entry rejected
	if err := store.InsertBulk(ctx, []*storage.AttemptLogEntry{nil}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
