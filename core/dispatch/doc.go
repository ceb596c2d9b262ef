// Package dispatch implements the assignment engine: the eligibility filter,
// the driver scorer, the conflict detector, the matcher and the coordinator
// that performs the guarded driver-binding write.
//
// Eligibility is a hard pass/fail gate; scoring is a soft ranking among
// drivers that already passed it. The coordinator's conditional write is the
// only mutation point for a load's (status, driverId) pair, which is what
// guarantees at most one successful bind per load under concurrent requests.
package dispatch
