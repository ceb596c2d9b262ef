package dispatch

import (
	"errors"
	"fmt"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
)

// ErrNotFound aliases the storage sentinel so callers only need one import.
var ErrNotFound = storage.ErrNotFound

// ErrNoEligibleDriver is returned when every candidate failed a hard gate.
var ErrNoEligibleDriver = errors.New("no eligible driver")

// ErrVehicleNotOwned is returned when an acceptance names a vehicle that does
// not belong to the accepting driver.
var ErrVehicleNotOwned = errors.New("vehicle not owned by driver")

// AlreadyAssignedError reports a lost assignment race: the load is bound to
// another driver. This is an expected outcome under concurrency, not a
// programming error; callers surface it as "someone else already took this".
type AlreadyAssignedError struct {
	LoadID   string
	HolderID string
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("load %s already assigned to driver %s", e.LoadID, e.HolderID)
}

// StatusIneligibleError reports that the load's lifecycle state forbids the
// attempted operation.
type StatusIneligibleError struct {
	LoadID string
	Status model.LoadStatus
}

func (e *StatusIneligibleError) Error() string {
	return fmt.Sprintf("load %s in status %s is not assignable", e.LoadID, e.Status)
}

// DisqualifiedError reports that a driver failed one or more hard eligibility
// gates. Reasons are always populated so the operator can see why.
type DisqualifiedError struct {
	DriverID string
	Reasons  []Reason
}

func (e *DisqualifiedError) Error() string {
	return fmt.Sprintf("driver %s disqualified: %v", e.DriverID, Details(e.Reasons))
}
