package model

import "time"

// DriverStatus is the availability state of a driver.
type DriverStatus string

const (
	DriverAvailable       DriverStatus = "AVAILABLE"
	DriverOnRoute         DriverStatus = "ON_ROUTE"
	DriverOffDuty         DriverStatus = "OFF_DUTY"
	DriverPendingApproval DriverStatus = "PENDING_APPROVAL"
	DriverInactive        DriverStatus = "INACTIVE"
)

// Driver represents a delivery agent.
type Driver struct {
	ID     string
	Status DriverStatus

	HazmatCertified bool // holds the UN3373 handling certification
	YearsExperience float64

	// Location is the driver's last known position, resolvable by the
	// distance provider. Absent when the driver has never reported one.
	Location *string

	// CanBeAssignedLoads is the opt-in flag for automatic matching. A false
	// value blocks auto-assignment only; explicit admin assignment ignores it.
	CanBeAssignedLoads bool

	CreatedAt time.Time
}

// Dispatchable reports whether the driver's availability state permits
// assignment at all. PENDING_APPROVAL and INACTIVE are never dispatchable.
func (s DriverStatus) Dispatchable() bool {
	switch s {
	case DriverAvailable, DriverOnRoute, DriverOffDuty:
		return true
	}
	return false
}
