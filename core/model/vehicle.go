package model

import "time"

// MaintenanceStatus is the outcome of the maintenance compliance check.
type MaintenanceStatus string

const (
	MaintenanceValid   MaintenanceStatus = "VALID"
	MaintenanceWarning MaintenanceStatus = "WARNING"
	MaintenanceDue     MaintenanceStatus = "DUE"
)

// Vehicle is a physical asset owned by a driver.
type Vehicle struct {
	ID       string
	DriverID string

	Active       bool
	Refrigerated bool

	RegistrationExpiry *time.Time
	InsuranceExpiry    *time.Time
	Maintenance        MaintenanceStatus
}

// DocumentsCompliant reports whether registration and insurance are both
// valid at the given instant. A missing expiry date is non-compliant; an
// expiry exactly equal to now is already expired.
func (v Vehicle) DocumentsCompliant(now time.Time) bool {
	if v.RegistrationExpiry == nil || v.InsuranceExpiry == nil {
		return false
	}
	return v.RegistrationExpiry.After(now) && v.InsuranceExpiry.After(now)
}

// MaintenanceCompliant reports whether the vehicle may be dispatched.
// WARNING still passes; only DUE blocks assignment.
func (v Vehicle) MaintenanceCompliant() bool {
	return v.Maintenance != MaintenanceDue
}

// Compliant combines document and maintenance compliance for an active vehicle.
func (v Vehicle) Compliant(now time.Time) bool {
	return v.Active && v.DocumentsCompliant(now) && v.MaintenanceCompliant()
}
