package dispatch

import "fmt"

// ReasonKind tags a disqualification or bonus so consumers can branch on it
// while still rendering the human text.
type ReasonKind string

const (
	ReasonStatus            ReasonKind = "driver_status"
	ReasonCertification     ReasonKind = "certification"
	ReasonTemperature       ReasonKind = "temperature"
	ReasonVehicleCompliance ReasonKind = "vehicle_compliance"
	ReasonOptOut            ReasonKind = "opt_out"
	ReasonConflict          ReasonKind = "schedule_conflict"
	ReasonDistance          ReasonKind = "distance"
	ReasonExperience        ReasonKind = "experience"
)

// Reason is one tagged explanation attached to an eligibility or scoring
// decision.
type Reason struct {
	Kind   ReasonKind `json:"kind"`
	Detail string     `json:"detail"`
}

func reasonf(kind ReasonKind, format string, args ...any) Reason {
	return Reason{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Details flattens reasons to their human text.
func Details(reasons []Reason) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.Detail)
	}
	return out
}
