package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/model"

	"github.com/rs/zerolog"
)

func TestRefundWorkerAppliesPendingRefund(t *testing.T) {
	repo := newFakeProfileRepo(&model.Profile{ID: "u1", PlanType: model.PlanStandard, ChatCredits: 0})
	outbox := &fakeOutbox{}
	if err := outbox.Enqueue(context.Background(), "u1", "connection reset"); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	w := NewRefundWorker(repo, outbox, time.Second, 5, 10, zerolog.Nop())
	w.drain(context.Background())

	if repo.profiles["u1"].ChatCredits != 1 {
		t.Fatalf("expected refunded balance 1, got %d", repo.profiles["u1"].ChatCredits)
	}
	if len(outbox.doneIDs) != 1 {
		t.Fatalf("expected entry marked done, got %v", outbox.doneIDs)
	}
}

func TestRefundWorkerAbandonsAfterMaxAttempts(t *testing.T) {
	repo := newFakeProfileRepo(&model.Profile{ID: "u1", PlanType: model.PlanStandard})
	repo.refundErr = errors.New("still down")
	outbox := &fakeOutbox{}
	if err := outbox.Enqueue(context.Background(), "u1", "connection reset"); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	w := NewRefundWorker(repo, outbox, time.Second, 3, 10, zerolog.Nop())
	for i := 0; i < 4; i++ {
		w.drain(context.Background())
	}

	if outbox.entries[0].Status != model.RefundStatusAbandoned {
		t.Fatalf("expected entry abandoned, got %s", outbox.entries[0].Status)
	}
	if outbox.entries[0].Attempts != 3 {
		t.Fatalf("expected 3 attempts before abandoning, got %d", outbox.entries[0].Attempts)
	}
	if len(outbox.doneIDs) != 0 {
		t.Fatal("failed refund must never be marked done")
	}
}

func TestRefundWorkerStopsOnContextCancel(t *testing.T) {
	repo := newFakeProfileRepo()
	w := NewRefundWorker(repo, &fakeOutbox{}, time.Millisecond, 5, 10, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
