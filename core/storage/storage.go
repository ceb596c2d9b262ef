// Package storage defines the persistence ports of the dispatch engine.
// The load's (status, driverId) pair is mutated exclusively through the
// conditional AssignDriver write; no other path touches those fields.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// AssignmentWrite describes one conditional driver-binding write. The write
// takes effect only if, at write time, the load's driver is still unset (or
// already equals DriverID) and its status is in FromStatuses.
type AssignmentWrite struct {
	LoadID       string
	DriverID     string
	VehicleID    *string
	FromStatuses []model.LoadStatus
	ToStatus     model.LoadStatus
	AssignedAt   time.Time
	AcceptedAt   *time.Time
}

// TrackingEvent is one immutable entry in a load's audit trail.
type TrackingEvent struct {
	ID         string     `json:"id"`
	LoadID     string     `json:"load_id"`
	Kind       string     `json:"kind"`
	FromStatus string     `json:"from_status,omitempty"`
	ToStatus   string     `json:"to_status,omitempty"`
	DriverID   string     `json:"driver_id,omitempty"`
	Note       string     `json:"note,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// LoadStore provides load persistence.
type LoadStore interface {
	GetLoad(ctx context.Context, id string) (model.Load, error)

	// AssignDriver performs the conditional write and reports how many rows
	// were affected. Zero means the precondition no longer held; the caller
	// re-reads and classifies the failure.
	AssignDriver(ctx context.Context, w AssignmentWrite) (int64, error)

	// OpenLoadsForDriver lists the driver's unfinished assignments, used by
	// the conflict detector.
	OpenLoadsForDriver(ctx context.Context, driverID string) ([]model.Load, error)

	// AppendEvent records an audit event. Failures are best-effort and must
	// never roll back an assignment.
	AppendEvent(ctx context.Context, ev TrackingEvent) error

	// EventsForLoad returns the load's audit trail in append order.
	EventsForLoad(ctx context.Context, loadID string) ([]TrackingEvent, error)
}

// DriverStore provides read-only driver and vehicle data.
type DriverStore interface {
	GetDriver(ctx context.Context, id string) (model.Driver, error)
	ListDrivers(ctx context.Context) ([]model.Driver, error)
	VehiclesForDriver(ctx context.Context, driverID string) ([]model.Vehicle, error)
}
