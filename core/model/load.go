package model

import "time"

// LoadStatus identifies one state in the load lifecycle.
type LoadStatus string

const (
	StatusNew                  LoadStatus = "NEW"
	StatusRequested            LoadStatus = "REQUESTED"
	StatusQuoted               LoadStatus = "QUOTED"
	StatusQuoteRequested       LoadStatus = "QUOTE_REQUESTED"
	StatusDriverQuoteSubmitted LoadStatus = "DRIVER_QUOTE_SUBMITTED"
	StatusQuoteAccepted        LoadStatus = "QUOTE_ACCEPTED"
	StatusScheduled            LoadStatus = "SCHEDULED"
	StatusPickedUp             LoadStatus = "PICKED_UP"
	StatusInTransit            LoadStatus = "IN_TRANSIT"
	StatusDelivered            LoadStatus = "DELIVERED"
	StatusCompleted            LoadStatus = "COMPLETED"
	StatusCancelled            LoadStatus = "CANCELLED"
	StatusDenied               LoadStatus = "DENIED"
)

// TemperatureClass is the temperature control a load requires in transit.
type TemperatureClass string

const (
	TempAmbient      TemperatureClass = "AMBIENT"
	TempRefrigerated TemperatureClass = "REFRIGERATED"
	TempFrozen       TemperatureClass = "FROZEN"
)

// HazardClass is the regulatory category of the specimen being moved.
type HazardClass string

const (
	HazardNone   HazardClass = "NONE"
	HazardUN3373 HazardClass = "UN3373"
)

// ServiceTier is the service priority of a load.
type ServiceTier string

const (
	TierRoutine      ServiceTier = "ROUTINE"
	TierStat         ServiceTier = "STAT"
	TierCriticalStat ServiceTier = "CRITICAL_STAT"
)

// Load represents a single transport request.
type Load struct {
	ID           string
	TrackingCode string
	Status       LoadStatus

	Temperature TemperatureClass
	Hazard      HazardClass
	Tier        ServiceTier

	PickupAddress   string
	DeliveryAddress string
	ReadyAt         *time.Time // earliest pickup
	DeadlineAt      *time.Time // latest acceptable delivery

	DriverID   *string
	VehicleID  *string
	AssignedAt *time.Time
	AcceptedAt *time.Time

	CreatedAt time.Time
}

// Terminal reports whether no further assignment is ever legal from s.
func (s LoadStatus) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCompleted, StatusCancelled, StatusDenied:
		return true
	}
	return false
}

// Assignable reports whether a driver may be bound to a load in state s.
// Idempotent re-assignment of the same driver is additionally legal from
// SCHEDULED; callers handle that case explicitly.
func (s LoadStatus) Assignable() bool {
	switch s {
	case StatusNew, StatusRequested, StatusQuoted, StatusQuoteAccepted:
		return true
	}
	return false
}

// AssignableStatuses is the guard set for the conditional assignment write.
func AssignableStatuses() []LoadStatus {
	return []LoadStatus{StatusNew, StatusRequested, StatusQuoted, StatusQuoteAccepted}
}

// transitions lists the legal forward edges of the lifecycle. CANCELLED and
// DENIED are reachable from every non-terminal state and are handled in
// CanTransition directly.
var transitions = map[LoadStatus][]LoadStatus{
	StatusNew:                  {StatusRequested, StatusQuoteRequested, StatusScheduled},
	StatusRequested:            {StatusQuoted, StatusQuoteRequested, StatusScheduled},
	StatusQuoted:               {StatusQuoteAccepted, StatusScheduled},
	StatusQuoteRequested:       {StatusDriverQuoteSubmitted},
	StatusDriverQuoteSubmitted: {StatusScheduled},
	StatusQuoteAccepted:        {StatusScheduled},
	StatusScheduled:            {StatusPickedUp, StatusScheduled},
	StatusPickedUp:             {StatusInTransit},
	StatusInTransit:            {StatusDelivered},
	StatusDelivered:            {StatusCompleted},
}

// CanTransition reports whether moving a load from one status to another is
// legal. The lifecycle is strictly forward with branch-to-terminal; the only
// permitted cycle is the idempotent SCHEDULED -> SCHEDULED re-assignment.
func CanTransition(from, to LoadStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled || to == StatusDenied {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var farFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Window returns the occupancy interval of the load for conflict detection.
// A missing ready-time extends the interval to the distant past, a missing
// deadline extends it to the distant future: loads with unknown bounds are
// treated as occupying the driver conservatively.
func (l Load) Window() (start, end time.Time) {
	start = time.Time{}
	if l.ReadyAt != nil {
		start = *l.ReadyAt
	}
	end = farFuture
	if l.DeadlineAt != nil {
		end = *l.DeadlineAt
	}
	return start, end
}
