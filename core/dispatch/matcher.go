package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
)

// MatchResult is the ranked outcome of a matching pass. Recommended is the
// top-scoring eligible driver; Alternatives follow in descending score order.
// Disqualified drivers are listed with their reasons for operator
// transparency, never silently dropped.
type MatchResult struct {
	Recommended  *Candidate  `json:"recommended,omitempty"`
	Alternatives []Candidate `json:"alternatives,omitempty"`
	Disqualified []Rejection `json:"disqualified,omitempty"`
}

// Rejection is one driver that failed a hard eligibility gate.
type Rejection struct {
	Driver  model.Driver `json:"driver"`
	Reasons []Reason     `json:"reasons"`
}

// Matcher runs the automatic matching pipeline: eligibility filter, then
// scorer, then ranking.
type Matcher struct {
	loads   storage.LoadStore
	drivers storage.DriverStore
	filter  EligibilityFilter
	scorer  *Scorer
	log     logger.Logger
	now     func() time.Time
}

// NewMatcher creates a matcher over the given stores and scorer.
func NewMatcher(loads storage.LoadStore, drivers storage.DriverStore, scorer *Scorer, log logger.Logger) (*Matcher, error) {
	if loads == nil || drivers == nil || scorer == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewMatcher")
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Matcher{loads: loads, drivers: drivers, scorer: scorer, log: log, now: time.Now}, nil
}

// FindBestDriver evaluates and ranks every known driver for the load. It has
// no side effects and is safe to expose as a preview. Returns
// ErrNoEligibleDriver when every candidate fails a hard gate.
func (m *Matcher) FindBestDriver(ctx context.Context, loadID string) (MatchResult, error) {
	started := m.now()
	defer func() { matchingDuration.Observe(time.Since(started).Seconds()) }()

	load, err := m.loads.GetLoad(ctx, loadID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("get load %s: %w", loadID, err)
	}
	if load.Status.Terminal() || !load.Status.Assignable() {
		return MatchResult{}, &StatusIneligibleError{LoadID: loadID, Status: load.Status}
	}

	drivers, err := m.drivers.ListDrivers(ctx)
	if err != nil {
		return MatchResult{}, fmt.Errorf("list drivers: %w", err)
	}

	var res MatchResult
	var eligible []model.Driver
	for _, d := range drivers {
		vehicles, err := m.drivers.VehiclesForDriver(ctx, d.ID)
		if err != nil {
			return MatchResult{}, fmt.Errorf("list vehicles for driver %s: %w", d.ID, err)
		}
		eval := m.filter.Evaluate(load, d, vehicles, m.now(), ModeAutomatic)
		if !eval.Eligible {
			for _, r := range eval.Reasons {
				driverDisqualifications.WithLabelValues(string(r.Kind)).Inc()
			}
			res.Disqualified = append(res.Disqualified, Rejection{Driver: d, Reasons: eval.Reasons})
			continue
		}
		eligible = append(eligible, d)
	}

	if len(eligible) == 0 {
		m.log.Infof("load %s: %d drivers evaluated, none eligible", loadID, len(drivers))
		return res, ErrNoEligibleDriver
	}

	ranked := m.scorer.Rank(ctx, load, eligible)
	res.Recommended = &ranked[0]
	res.Alternatives = ranked[1:]
	m.log.Debugf("load %s: recommended driver %s (score %.2f) out of %d eligible",
		loadID, res.Recommended.Driver.ID, res.Recommended.Score, len(ranked))
	return res, nil
}

// AutoAssign finds the best driver and binds it through the coordinator.
// The conditional write still decides the race; a concurrent manual
// assignment can win between ranking and binding.
func (m *Matcher) AutoAssign(ctx context.Context, coordinator *Coordinator, loadID string) (MatchResult, error) {
	res, err := m.FindBestDriver(ctx, loadID)
	if err != nil {
		return res, err
	}
	if err := coordinator.Assign(ctx, loadID, res.Recommended.Driver.ID, ModeAutomatic); err != nil {
		return res, err
	}
	return res, nil
}
