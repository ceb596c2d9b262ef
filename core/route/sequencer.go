// Package route implements the greedy multi-stop route sequencer. It is
// deliberately a heuristic, not a TSP solver: good enough, fast and
// explainable beats globally optimal for same-day medical runs.
package route

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
)

// StopKind distinguishes the two waypoints a load contributes.
type StopKind string

const (
	StopPickup   StopKind = "PICKUP"
	StopDelivery StopKind = "DELIVERY"
)

// Stop is a transient planning waypoint. Stops exist only for the duration
// of one sequencing call and are never persisted.
type Stop struct {
	LoadID       string            `json:"load_id"`
	TrackingCode string            `json:"tracking_code"`
	Kind         StopKind          `json:"kind"`
	Address      string            `json:"address"`
	Tier         model.ServiceTier `json:"tier"`
	ReadyAt      *time.Time        `json:"ready_at,omitempty"`
	DeadlineAt   *time.Time        `json:"deadline_at,omitempty"`
	ArriveAt     time.Time         `json:"arrive_at"`
	LegMiles     float64           `json:"leg_miles"`
	LegMinutes   float64           `json:"leg_minutes"`
}

// HopFailure records one distance lookup that failed during sequencing. A
// failed hop is skipped and recorded, never fatal to the whole run.
type HopFailure struct {
	From   string `json:"from"`
	To     string `json:"to"`
	LoadID string `json:"load_id"`
	Err    string `json:"error"`
}

// Plan is the ordered output of one sequencing call.
type Plan struct {
	Stops        []Stop       `json:"stops"`
	TotalMiles   float64      `json:"total_miles"`
	TotalMinutes float64      `json:"total_minutes"`
	Failures     []HopFailure `json:"failures,omitempty"`
}

// Config holds the tunable cost weights of the greedy selection.
type Config struct {
	// StatDiscount is subtracted from the cost of STAT stops; critical-STAT
	// stops get twice the discount. Higher tiers are preferred, not forced.
	StatDiscount float64 `json:"stat_discount"`
	// WaitPenaltyPerHour is added per hour of waiting when a pickup's
	// ready-time has not yet arrived.
	WaitPenaltyPerHour float64 `json:"wait_penalty_per_hour"`
}

// SetDefaults fills zero-valued weights with the defaults.
func (c *Config) SetDefaults() {
	if c.StatDiscount == 0 {
		c.StatDiscount = 5
	}
	if c.WaitPenaltyPerHour == 0 {
		c.WaitPenaltyPerHour = 3
	}
}

// Sequencer orders the stops of a batch of loads for one driver.
type Sequencer struct {
	cfg      Config
	distance geo.DistanceProvider
	log      logger.Logger
	now      func() time.Time
}

// NewSequencer creates a sequencer using the given distance provider.
func NewSequencer(cfg Config, distance geo.DistanceProvider, log logger.Logger) (*Sequencer, error) {
	if distance == nil {
		return nil, fmt.Errorf("route: nil distance provider")
	}
	cfg.SetDefaults()
	if log == nil {
		log = logger.Nop{}
	}
	return &Sequencer{cfg: cfg, distance: distance, log: log, now: time.Now}, nil
}

// node is one stop plus its sequencing state.
type node struct {
	stop    Stop
	visited bool
	skipped bool
}

// Sequence expands every load into a pickup and a delivery stop and orders
// them greedily: at each step the cheapest unlocked stop is appended, where
// cost combines travel distance, a priority discount and a wait penalty. A
// delivery is locked until its paired pickup has been visited; that
// precedence is never violated. The route starts at origin, or at the first
// load's pickup when the driver has no known position.
func (s *Sequencer) Sequence(ctx context.Context, loads []model.Load, origin *string) (Plan, error) {
	plan := Plan{Stops: []Stop{}}
	if len(loads) == 0 {
		return plan, nil
	}
	plansTotal.Inc()

	nodes := expand(loads)
	current, startIdx := startPosition(nodes, origin)
	currentTime := s.now()

	// When starting at the first pickup there is no travel leg to it; visit
	// it directly.
	if startIdx >= 0 {
		nodes[startIdx].visited = true
		nodes[startIdx].stop.ArriveAt = currentTime
		plan.Stops = append(plan.Stops, nodes[startIdx].stop)
	}

	for {
		if err := ctx.Err(); err != nil {
			return plan, err
		}

		bestIdx := -1
		var bestCost float64
		var bestLeg geo.Leg
		for i := range nodes {
			n := &nodes[i]
			if n.visited || n.skipped || !unlocked(nodes, *n) {
				continue
			}
			leg, err := s.distance.Distance(ctx, current, n.stop.Address)
			if err != nil {
				s.log.Warnf("distance %s -> %s failed: %v", current, n.stop.Address, err)
				plan.Failures = append(plan.Failures, HopFailure{
					From: current, To: n.stop.Address, LoadID: n.stop.LoadID, Err: err.Error(),
				})
				n.skipped = true
				hopFailures.Inc()
				continue
			}
			cost := s.cost(leg, n.stop, currentTime)
			if bestIdx == -1 || cost < bestCost || (cost == bestCost && lessStop(n.stop, nodes[bestIdx].stop)) {
				bestIdx, bestCost, bestLeg = i, cost, leg
			}
		}
		if bestIdx == -1 {
			break
		}

		n := &nodes[bestIdx]
		n.visited = true
		currentTime = currentTime.Add(time.Duration(bestLeg.Minutes * float64(time.Minute)))
		// Arriving before a pickup's ready-time means waiting at the dock.
		if n.stop.ReadyAt != nil && currentTime.Before(*n.stop.ReadyAt) {
			currentTime = *n.stop.ReadyAt
		}
		n.stop.ArriveAt = currentTime
		n.stop.LegMiles = bestLeg.Miles
		n.stop.LegMinutes = bestLeg.Minutes
		plan.Stops = append(plan.Stops, n.stop)
		plan.TotalMiles += bestLeg.Miles
		plan.TotalMinutes += bestLeg.Minutes
		current = n.stop.Address
	}

	// Deliveries whose pickup was skipped stay locked forever; surface them
	// as failures so partial progress is still useful to the caller.
	for _, n := range nodes {
		if !n.visited && !n.skipped {
			plan.Failures = append(plan.Failures, HopFailure{
				From: current, To: n.stop.Address, LoadID: n.stop.LoadID,
				Err: "unreachable: paired pickup was skipped",
			})
		}
	}
	return plan, nil
}

// cost is the greedy selection criterion: travel miles, minus a discount for
// urgent service tiers, plus a penalty proportional to the hours the driver
// would wait for a not-yet-ready pickup.
func (s *Sequencer) cost(leg geo.Leg, stop Stop, at time.Time) float64 {
	cost := leg.Miles
	switch stop.Tier {
	case model.TierStat:
		cost -= s.cfg.StatDiscount
	case model.TierCriticalStat:
		cost -= 2 * s.cfg.StatDiscount
	}
	if stop.ReadyAt != nil {
		arrival := at.Add(time.Duration(leg.Minutes * float64(time.Minute)))
		if wait := stop.ReadyAt.Sub(arrival); wait > 0 {
			cost += s.cfg.WaitPenaltyPerHour * wait.Hours()
		}
	}
	return cost
}

func expand(loads []model.Load) []node {
	nodes := make([]node, 0, 2*len(loads))
	for _, l := range loads {
		nodes = append(nodes, node{stop: Stop{
			LoadID:       l.ID,
			TrackingCode: l.TrackingCode,
			Kind:         StopPickup,
			Address:      l.PickupAddress,
			Tier:         l.Tier,
			ReadyAt:      l.ReadyAt,
		}})
		nodes = append(nodes, node{stop: Stop{
			LoadID:       l.ID,
			TrackingCode: l.TrackingCode,
			Kind:         StopDelivery,
			Address:      l.DeliveryAddress,
			Tier:         l.Tier,
			DeadlineAt:   l.DeadlineAt,
		}})
	}
	// Deterministic iteration order regardless of input ordering.
	sort.SliceStable(nodes, func(i, j int) bool { return lessStop(nodes[i].stop, nodes[j].stop) })
	return nodes
}

// unlocked reports whether the stop may be visited now: pickups always, a
// delivery only once its paired pickup has been visited.
func unlocked(nodes []node, n node) bool {
	if n.stop.Kind == StopPickup {
		return true
	}
	for _, other := range nodes {
		if other.stop.Kind == StopPickup && other.stop.LoadID == n.stop.LoadID {
			return other.visited
		}
	}
	return false
}

// startPosition picks the route origin. With a known driver position the
// route starts there and every stop is reached by travel; without one it
// starts at the first load's pickup.
func startPosition(nodes []node, origin *string) (string, int) {
	if origin != nil && *origin != "" {
		return *origin, -1
	}
	for i, n := range nodes {
		if n.stop.Kind == StopPickup {
			return n.stop.Address, i
		}
	}
	return "", -1
}

func lessStop(a, b Stop) bool {
	if a.LoadID != b.LoadID {
		return a.LoadID < b.LoadID
	}
	return a.Kind == StopPickup && b.Kind == StopDelivery
}
