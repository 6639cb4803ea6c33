package services

import (
	"context"
	"errors"
	"testing"

	"moneybook/internal/core"
	"moneybook/internal/feed"
	"moneybook/internal/storage"
	"moneybook/internal/storage/memory"
)

type recordingNotifier struct {
	changes []feed.Change
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, c feed.Change) error {
	r.changes = append(r.changes, c)
	return r.err
}

func TestRecordService_CreateAndDelete(t *testing.T) {
	store := memory.New()
	n := &recordingNotifier{}
	svc := NewRecordService(store, n, nil)
	ctx := context.Background()

	rec, err := svc.Create(ctx, core.NewRecord{OwnerID: "u1", Kind: core.KindExpense, Amount: 12, Period: "2024-05"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(n.changes) != 1 || n.changes[0].Action != feed.ActionCreated || n.changes[0].RecordID != rec.ID {
		t.Fatalf("changes = %+v", n.changes)
	}

	if err := svc.Delete(ctx, "u1", rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(n.changes) != 2 || n.changes[1].Action != feed.ActionDeleted || n.changes[1].Period != "2024-05" {
		t.Fatalf("changes = %+v", n.changes)
	}
}

func TestRecordService_StoreErrorsPropagate(t *testing.T) {
	n := &recordingNotifier{}
	svc := NewRecordService(memory.New(), n, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, core.NewRecord{OwnerID: "u1", Kind: core.KindExpense, Amount: -1, Period: "2024-05"})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(n.changes) != 0 {
		t.Fatalf("failed writes must not notify: %+v", n.changes)
	}
}

func TestRecordService_NotifyFailureIsNotFatal(t *testing.T) {
	n := &recordingNotifier{err: errors.New("broker down")}
	svc := NewRecordService(memory.New(), n, nil)
	if _, err := svc.Create(context.Background(), core.NewRecord{OwnerID: "u1", Kind: core.KindIncome, Amount: 1, Period: "2024-05"}); err != nil {
		t.Fatalf("Create should succeed despite notify failure: %v", err)
	}
}

func TestRecordService_NilNotifier(t *testing.T) {
	svc := NewRecordService(memory.New(), nil, nil)
	if _, err := svc.Create(context.Background(), core.NewRecord{OwnerID: "u1", Kind: core.KindIncome, Amount: 1, Period: "2024-05"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}
