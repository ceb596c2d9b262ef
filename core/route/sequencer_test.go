package route

import (
	"context"
	"testing"
	"time"

	coregeo "github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	infrageo "github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/geo"
)

var planStart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func routeLoad(id, pickup, delivery string) model.Load {
	return model.Load{
		ID:              id,
		TrackingCode:    "TRK-" + id,
		Tier:            model.TierRoutine,
		PickupAddress:   pickup,
		DeliveryAddress: delivery,
	}
}

// gridProvider returns a provider where every pair of named points is
// connected; miles grow with the lexical gap so orderings are predictable.
func gridProvider(points ...string) *infrageo.StaticProvider {
	p := infrageo.NewStaticProvider(nil)
	for i, from := range points {
		for j, to := range points {
			if i == j {
				continue
			}
			gap := float64(j - i)
			if gap < 0 {
				gap = -gap
			}
			p.Set(from, to, coregeo.Leg{Miles: gap * 10, Minutes: gap * 15})
		}
	}
	return p
}

func newTestSequencer(t *testing.T, cfg Config, p coregeo.DistanceProvider) *Sequencer {
	t.Helper()
	s, err := NewSequencer(cfg, p, nil)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	s.now = func() time.Time { return planStart }
	return s
}

func stopIndex(stops []Stop, loadID string, kind StopKind) int {
	for i, s := range stops {
		if s.LoadID == loadID && s.Kind == kind {
			return i
		}
	}
	return -1
}

func TestSequence_EveryLoadContributesTwoStops(t *testing.T) {
	p := gridProvider("base", "p1", "d1", "p2", "d2", "p3", "d3")
	s := newTestSequencer(t, Config{}, p)

	loads := []model.Load{
		routeLoad("l1", "p1", "d1"),
		routeLoad("l2", "p2", "d2"),
		routeLoad("l3", "p3", "d3"),
	}
	plan, err := s.Sequence(context.Background(), loads, strPtr("base"))
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(plan.Stops) != 6 {
		t.Fatalf("expected 6 stops for 3 loads, got %d", len(plan.Stops))
	}
	if len(plan.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", plan.Failures)
	}
	if plan.TotalMiles <= 0 || plan.TotalMinutes <= 0 {
		t.Fatal("totals must accumulate")
	}
}

func TestSequence_PickupAlwaysPrecedesDelivery(t *testing.T) {
	p := gridProvider("base", "p1", "d1", "p2", "d2", "p3", "d3")
	s := newTestSequencer(t, Config{}, p)

	loads := []model.Load{
		routeLoad("l3", "d3", "p3"), // addresses crossed on purpose
		routeLoad("l1", "p1", "d1"),
		routeLoad("l2", "p2", "d2"),
	}
	// Precedence must hold for any input permutation.
	for rotation := 0; rotation < len(loads); rotation++ {
		rotated := append(loads[rotation:], loads[:rotation]...)
		plan, err := s.Sequence(context.Background(), rotated, strPtr("base"))
		if err != nil {
			t.Fatalf("Sequence: %v", err)
		}
		for _, l := range loads {
			pi := stopIndex(plan.Stops, l.ID, StopPickup)
			di := stopIndex(plan.Stops, l.ID, StopDelivery)
			if pi == -1 || di == -1 {
				t.Fatalf("load %s missing from plan", l.ID)
			}
			if di < pi {
				t.Fatalf("load %s delivered at %d before pickup at %d", l.ID, di, pi)
			}
		}
	}
}

func TestSequence_NoOriginStartsAtFirstPickup(t *testing.T) {
	p := gridProvider("p1", "d1")
	s := newTestSequencer(t, Config{}, p)

	plan, err := s.Sequence(context.Background(), []model.Load{routeLoad("l1", "p1", "d1")}, nil)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(plan.Stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(plan.Stops))
	}
	first := plan.Stops[0]
	if first.Kind != StopPickup || first.LegMiles != 0 {
		t.Fatalf("the route must open at the first pickup with no travel leg, got %+v", first)
	}
}

func TestSequence_CriticalStatPreferred(t *testing.T) {
	// Two pickups equally far from base. The critical-STAT one must win the
	// first hop via the tier discount.
	p := infrageo.NewStaticProvider(nil)
	p.Set("base", "pr", coregeo.Leg{Miles: 10, Minutes: 15})
	p.Set("base", "pc", coregeo.Leg{Miles: 10, Minutes: 15})
	p.Set("pr", "pc", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("pr", "dr", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("pc", "dc", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("pc", "dr", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("pc", "pr", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("dc", "pr", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("dc", "dr", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("dr", "dc", coregeo.Leg{Miles: 5, Minutes: 8})
	s := newTestSequencer(t, Config{StatDiscount: 5}, p)

	routine := routeLoad("a-routine", "pr", "dr")
	critical := routeLoad("b-critical", "pc", "dc")
	critical.Tier = model.TierCriticalStat

	plan, err := s.Sequence(context.Background(), []model.Load{routine, critical}, strPtr("base"))
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if plan.Stops[0].LoadID != "b-critical" {
		t.Fatalf("critical-STAT pickup should be chosen first, got %s %s", plan.Stops[0].LoadID, plan.Stops[0].Kind)
	}
}

func TestSequence_WaitingClampsArrival(t *testing.T) {
	p := gridProvider("base", "p1", "d1")
	s := newTestSequencer(t, Config{}, p)

	ready := planStart.Add(2 * time.Hour)
	load := routeLoad("l1", "p1", "d1")
	load.ReadyAt = &ready

	plan, err := s.Sequence(context.Background(), []model.Load{load}, strPtr("base"))
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	pickup := plan.Stops[stopIndex(plan.Stops, "l1", StopPickup)]
	if pickup.ArriveAt.Before(ready) {
		t.Fatalf("arrival %s precedes the ready-time %s", pickup.ArriveAt, ready)
	}
}

func TestSequence_FailedHopSkipsNotAborts(t *testing.T) {
	// l2's pickup is unroutable. The run must still deliver l1 and surface
	// both of l2's stops as failures.
	p := infrageo.NewStaticProvider(nil)
	p.Set("base", "p1", coregeo.Leg{Miles: 10, Minutes: 15})
	p.Set("p1", "d1", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("base", "d2", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("p1", "d2", coregeo.Leg{Miles: 5, Minutes: 8})
	p.Set("d1", "d2", coregeo.Leg{Miles: 5, Minutes: 8})
	s := newTestSequencer(t, Config{}, p)

	loads := []model.Load{
		routeLoad("l1", "p1", "d1"),
		routeLoad("l2", "p2-unroutable", "d2"),
	}
	plan, err := s.Sequence(context.Background(), loads, strPtr("base"))
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if got := stopIndex(plan.Stops, "l1", StopDelivery); got == -1 {
		t.Fatal("routable load must still complete")
	}
	if stopIndex(plan.Stops, "l2", StopPickup) != -1 {
		t.Fatal("unroutable pickup must not appear in the plan")
	}
	if len(plan.Failures) == 0 {
		t.Fatal("skipped hops must be surfaced as failures")
	}
	foundLocked := false
	for _, f := range plan.Failures {
		if f.LoadID == "l2" && f.To == "d2" {
			foundLocked = true
		}
	}
	if !foundLocked {
		t.Fatalf("the delivery locked by the skipped pickup must be reported, got %+v", plan.Failures)
	}
}

func TestSequence_EmptyAndCancelled(t *testing.T) {
	p := gridProvider("base", "p1", "d1")
	s := newTestSequencer(t, Config{}, p)

	plan, err := s.Sequence(context.Background(), nil, strPtr("base"))
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(plan.Stops) != 0 {
		t.Fatalf("empty input must yield an empty plan, got %d stops", len(plan.Stops))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Sequence(ctx, []model.Load{routeLoad("l1", "p1", "d1")}, strPtr("base")); err == nil {
		t.Fatal("a cancelled context must stop the run")
	}
}
