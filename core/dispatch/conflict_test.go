package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/storage/memory"
)

func windowLoad(id, driverID string, start, end time.Time) model.Load {
	l := model.Load{
		ID:         id,
		Status:     model.StatusScheduled,
		ReadyAt:    &start,
		DeadlineAt: &end,
	}
	if driverID != "" {
		l.DriverID = &driverID
	}
	return l
}

func TestHasConflict_Overlap(t *testing.T) {
	store := memory.NewStore()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// Driver already holds 10:00-12:00.
	store.PutLoad(windowLoad("held", "d1", day.Add(10*time.Hour), day.Add(12*time.Hour)))

	det := NewConflictDetector(store)
	candidate := windowLoad("cand", "", day.Add(11*time.Hour), day.Add(13*time.Hour))
	verdict, err := det.HasConflict(context.Background(), model.Driver{ID: "d1"}, candidate)
	if err != nil {
		t.Fatalf("conflict check: %v", err)
	}
	if !verdict.Conflict {
		t.Fatal("11:00-13:00 should conflict with held 10:00-12:00")
	}
	if len(verdict.Details) == 0 {
		t.Fatal("conflict details must be populated")
	}
}

func TestHasConflict_BackToBack(t *testing.T) {
	store := memory.NewStore()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	store.PutLoad(windowLoad("held", "d1", day.Add(10*time.Hour), day.Add(12*time.Hour)))

	det := NewConflictDetector(store)
	// Touching boundaries: starts exactly when the held load ends.
	candidate := windowLoad("cand", "", day.Add(12*time.Hour), day.Add(14*time.Hour))
	verdict, err := det.HasConflict(context.Background(), model.Driver{ID: "d1"}, candidate)
	if err != nil {
		t.Fatalf("conflict check: %v", err)
	}
	if verdict.Conflict {
		t.Fatal("back-to-back windows with touching boundaries must not conflict")
	}
}

func TestHasConflict_OpenEndedHeldLoad(t *testing.T) {
	store := memory.NewStore()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	ready := day.Add(9 * time.Hour)
	held := model.Load{ID: "held", Status: model.StatusScheduled, ReadyAt: &ready}
	d1 := "d1"
	held.DriverID = &d1
	store.PutLoad(held)

	det := NewConflictDetector(store)
	// A held load with no deadline occupies time indefinitely from 09:00.
	candidate := windowLoad("cand", "", day.Add(15*time.Hour), day.Add(16*time.Hour))
	verdict, err := det.HasConflict(context.Background(), model.Driver{ID: "d1"}, candidate)
	if err != nil {
		t.Fatalf("conflict check: %v", err)
	}
	if !verdict.Conflict {
		t.Fatal("open-ended held load should conflict with anything after its ready-time")
	}
}

func TestHasConflict_OtherDriverAndTerminal(t *testing.T) {
	store := memory.NewStore()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// Same window but held by another driver.
	store.PutLoad(windowLoad("other", "d2", day.Add(10*time.Hour), day.Add(12*time.Hour)))
	// Same window but already delivered.
	done := windowLoad("done", "d1", day.Add(10*time.Hour), day.Add(12*time.Hour))
	done.Status = model.StatusDelivered
	store.PutLoad(done)

	det := NewConflictDetector(store)
	candidate := windowLoad("cand", "", day.Add(10*time.Hour), day.Add(12*time.Hour))
	verdict, err := det.HasConflict(context.Background(), model.Driver{ID: "d1"}, candidate)
	if err != nil {
		t.Fatalf("conflict check: %v", err)
	}
	if verdict.Conflict {
		t.Fatal("finished loads and other drivers' loads must not conflict")
	}
}
