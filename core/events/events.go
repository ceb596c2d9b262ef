// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - AssignmentEvent: a driver was bound to a load
//   - TransitionEvent: a load changed lifecycle status
//   - RoutePlanEvent: a route was sequenced for a driver
package events

import (
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
)

// AssignmentEvent is published after a successful assignment or acceptance.
type AssignmentEvent struct {
	LoadID   string
	DriverID string
	Mode     string // "automatic", "manual" or "acceptance"
	At       time.Time
}

// TransitionEvent is published for each load status change.
type TransitionEvent struct {
	LoadID string
	From   model.LoadStatus
	To     model.LoadStatus
	At     time.Time
}

// RoutePlanEvent is published when a multi-stop route has been sequenced.
type RoutePlanEvent struct {
	DriverID   string
	Stops      int
	TotalMiles float64
	Failures   int
	At         time.Time
}
