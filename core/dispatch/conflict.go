package dispatch

import (
	"context"
	"fmt"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
)

// ConflictDetector decides whether accepting a load would overlap an existing
// committed time window for the driver.
type ConflictDetector struct {
	loads storage.LoadStore
}

// NewConflictDetector returns a detector backed by the given load store.
func NewConflictDetector(loads storage.LoadStore) *ConflictDetector {
	return &ConflictDetector{loads: loads}
}

// Conflict is the verdict of a conflict check.
type Conflict struct {
	Conflict bool     `json:"conflict"`
	Details  []string `json:"details,omitempty"`
}

// HasConflict checks the candidate load's window against every open load the
// driver already holds. Overlap is half-open (a.start < b.end && b.start <
// a.end) so back-to-back windows with touching boundaries do not conflict.
// Missing bounds are conservative: a load with no deadline occupies time
// indefinitely from its ready-time onward.
func (d *ConflictDetector) HasConflict(ctx context.Context, driver model.Driver, candidate model.Load) (Conflict, error) {
	open, err := d.loads.OpenLoadsForDriver(ctx, driver.ID)
	if err != nil {
		return Conflict{}, fmt.Errorf("list open loads for driver %s: %w", driver.ID, err)
	}

	candStart, candEnd := candidate.Window()
	var details []string
	for _, held := range open {
		if held.ID == candidate.ID {
			continue
		}
		heldStart, heldEnd := held.Window()
		if heldStart.Before(candEnd) && candStart.Before(heldEnd) {
			details = append(details, fmt.Sprintf("overlaps load %s (%s) window %s - %s",
				held.ID, held.TrackingCode, heldStart.Format("15:04"), heldEnd.Format("15:04")))
		}
	}
	return Conflict{Conflict: len(details) > 0, Details: details}, nil
}
