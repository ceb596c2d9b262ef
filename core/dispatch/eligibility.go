package dispatch

import (
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
)

// Mode distinguishes automatic matching from explicit admin assignment. The
// opt-out flag only blocks the automatic path; a human assigning a driver by
// hand overrides it, while the certification and vehicle gates apply to both.
type Mode string

const (
	ModeAutomatic Mode = "automatic"
	ModeManual    Mode = "manual"
)

// Evaluation is the outcome of an eligibility check. Reasons are populated
// for every failed rule; a driver can fail more than one.
type Evaluation struct {
	Eligible bool     `json:"eligible"`
	Reasons  []Reason `json:"reasons,omitempty"`
}

// EligibilityFilter applies the hard pass/fail gates. It is a pure function
// over its inputs; vehicle compliance is recomputed against the supplied
// clock on every call rather than read from a stored flag.
type EligibilityFilter struct{}

// Evaluate checks every rule independently and accumulates the failures.
func (EligibilityFilter) Evaluate(load model.Load, driver model.Driver, vehicles []model.Vehicle, now time.Time, mode Mode) Evaluation {
	var reasons []Reason

	if !driver.Status.Dispatchable() {
		reasons = append(reasons, reasonf(ReasonStatus, "driver status %s is not assignable", driver.Status))
	}

	if load.Hazard != model.HazardNone && !driver.HazmatCertified {
		reasons = append(reasons, reasonf(ReasonCertification, "load requires %s certification which the driver does not hold", load.Hazard))
	}

	if load.Temperature != model.TempAmbient && !hasRefrigeratedVehicle(vehicles) {
		reasons = append(reasons, reasonf(ReasonTemperature, "load requires %s transport but the driver owns no active refrigeration-equipped vehicle", load.Temperature))
	}

	if !hasCompliantVehicle(vehicles, now) {
		reasons = append(reasons, reasonf(ReasonVehicleCompliance, "driver owns no vehicle with valid registration, insurance and maintenance status"))
	}

	if mode == ModeAutomatic && !driver.CanBeAssignedLoads {
		reasons = append(reasons, reasonf(ReasonOptOut, "driver has opted out of automatic assignment"))
	}

	return Evaluation{Eligible: len(reasons) == 0, Reasons: reasons}
}

func hasRefrigeratedVehicle(vehicles []model.Vehicle) bool {
	for _, v := range vehicles {
		if v.Active && v.Refrigerated {
			return true
		}
	}
	return false
}

func hasCompliantVehicle(vehicles []model.Vehicle, now time.Time) bool {
	for _, v := range vehicles {
		if v.Compliant(now) {
			return true
		}
	}
	return false
}
