package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/events"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/notify"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/internal/eventbus"
)

// Coordinator executes the state transitions that bind a driver to a load.
// Concurrent assign/accept calls targeting the same load race on a single
// conditional write; at most one of them ever wins.
type Coordinator struct {
	loads    storage.LoadStore
	drivers  storage.DriverStore
	filter   EligibilityFilter
	bus      eventbus.EventBus
	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time
}

// NewCoordinator creates a coordinator. Bus and notifier may be nil.
func NewCoordinator(loads storage.LoadStore, drivers storage.DriverStore, bus eventbus.EventBus, notifier notify.Notifier, log logger.Logger) (*Coordinator, error) {
	if loads == nil || drivers == nil {
		return nil, fmt.Errorf("dispatch: nil store provided to NewCoordinator")
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Coordinator{
		loads:    loads,
		drivers:  drivers,
		bus:      bus,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}, nil
}

// Assign binds a driver to a load. The write succeeds only if, at write
// time, the load's driver is still unset (or already equals driverID, the
// idempotent retry) and its status is still in the guard set. Manual mode
// skips the opt-out gate but keeps the certification and vehicle gates.
func (c *Coordinator) Assign(ctx context.Context, loadID, driverID string, mode Mode) error {
	load, err := c.loads.GetLoad(ctx, loadID)
	if err != nil {
		return c.fail(notFoundOutcome(err, "load"), fmt.Errorf("get load %s: %w", loadID, err))
	}

	// Fast-fail pre-check. The guard inside the conditional write repeats it
	// to close the race between this read and the write.
	if err := precheckAssign(load, driverID); err != nil {
		return c.fail(outcomeOf(err), err)
	}

	driver, err := c.drivers.GetDriver(ctx, driverID)
	if err != nil {
		return c.fail(notFoundOutcome(err, "driver"), fmt.Errorf("get driver %s: %w", driverID, err))
	}
	vehicles, err := c.drivers.VehiclesForDriver(ctx, driverID)
	if err != nil {
		return c.fail("error", fmt.Errorf("list vehicles for driver %s: %w", driverID, err))
	}

	eval := c.filter.Evaluate(load, driver, vehicles, c.now(), mode)
	if !eval.Eligible {
		for _, r := range eval.Reasons {
			driverDisqualifications.WithLabelValues(string(r.Kind)).Inc()
		}
		return c.fail("disqualified", &DisqualifiedError{DriverID: driverID, Reasons: eval.Reasons})
	}

	now := c.now()
	write := storage.AssignmentWrite{
		LoadID:   loadID,
		DriverID: driverID,
		// SCHEDULED is in the guard set for the idempotent same-driver retry
		// only; the driver-unset-or-same condition blocks everyone else.
		FromStatuses: append(model.AssignableStatuses(), model.StatusScheduled),
		ToStatus:     model.StatusScheduled,
		AssignedAt:   now,
	}
	affected, err := c.loads.AssignDriver(ctx, write)
	if err != nil {
		return c.fail("error", fmt.Errorf("assign load %s: %w", loadID, err))
	}
	if affected == 0 {
		raceErr := c.classifyZeroAffected(ctx, loadID, driverID)
		return c.fail(outcomeOf(raceErr), raceErr)
	}

	assignmentAttempts.WithLabelValues("assigned").Inc()
	c.afterBind(ctx, load, driver, "assigned", string(mode), now)
	return nil
}

// Accept records a driver's confirmation of a load, binding driver and
// vehicle and always producing SCHEDULED. Acceptance is never legal from
// SCHEDULED or any later state.
func (c *Coordinator) Accept(ctx context.Context, loadID, driverID, vehicleID string) error {
	load, err := c.loads.GetLoad(ctx, loadID)
	if err != nil {
		return c.fail(notFoundOutcome(err, "load"), fmt.Errorf("get load %s: %w", loadID, err))
	}
	if load.Status.Terminal() || !load.Status.Assignable() {
		return c.fail("status_ineligible", &StatusIneligibleError{LoadID: loadID, Status: load.Status})
	}
	if load.DriverID != nil && *load.DriverID != driverID {
		return c.fail("already_assigned", &AlreadyAssignedError{LoadID: loadID, HolderID: *load.DriverID})
	}

	driver, err := c.drivers.GetDriver(ctx, driverID)
	if err != nil {
		return c.fail(notFoundOutcome(err, "driver"), fmt.Errorf("get driver %s: %w", driverID, err))
	}
	vehicles, err := c.drivers.VehiclesForDriver(ctx, driverID)
	if err != nil {
		return c.fail("error", fmt.Errorf("list vehicles for driver %s: %w", driverID, err))
	}
	if !ownsVehicle(vehicles, vehicleID) {
		return c.fail("vehicle_not_owned", fmt.Errorf("driver %s: %w", driverID, ErrVehicleNotOwned))
	}

	now := c.now()
	write := storage.AssignmentWrite{
		LoadID:       loadID,
		DriverID:     driverID,
		VehicleID:    &vehicleID,
		FromStatuses: model.AssignableStatuses(),
		ToStatus:     model.StatusScheduled,
		AssignedAt:   now,
		AcceptedAt:   &now,
	}
	affected, err := c.loads.AssignDriver(ctx, write)
	if err != nil {
		return c.fail("error", fmt.Errorf("accept load %s: %w", loadID, err))
	}
	if affected == 0 {
		raceErr := c.classifyZeroAffected(ctx, loadID, driverID)
		return c.fail(outcomeOf(raceErr), raceErr)
	}

	assignmentAttempts.WithLabelValues("accepted").Inc()
	c.afterBind(ctx, load, driver, "accepted", "acceptance", now)
	return nil
}

func precheckAssign(load model.Load, driverID string) error {
	if load.Status.Terminal() {
		return &StatusIneligibleError{LoadID: load.ID, Status: load.Status}
	}
	sameDriver := load.DriverID != nil && *load.DriverID == driverID
	if load.DriverID != nil && !sameDriver {
		return &AlreadyAssignedError{LoadID: load.ID, HolderID: *load.DriverID}
	}
	if !load.Status.Assignable() && !(load.Status == model.StatusScheduled && sameDriver) {
		return &StatusIneligibleError{LoadID: load.ID, Status: load.Status}
	}
	return nil
}

// classifyZeroAffected re-reads the load after a zero-row conditional write
// and returns a precise, distinguishable failure.
func (c *Coordinator) classifyZeroAffected(ctx context.Context, loadID, driverID string) error {
	assignmentRacesLost.Inc()
	load, err := c.loads.GetLoad(ctx, loadID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load %s: %w", loadID, ErrNotFound)
		}
		return fmt.Errorf("re-read load %s: %w", loadID, err)
	}
	if load.DriverID != nil && *load.DriverID != driverID {
		return &AlreadyAssignedError{LoadID: loadID, HolderID: *load.DriverID}
	}
	return &StatusIneligibleError{LoadID: loadID, Status: load.Status}
}

// afterBind runs the best-effort side effects of a successful bind: the
// audit event, the bus events and the notification. None of them can undo
// the write.
func (c *Coordinator) afterBind(ctx context.Context, load model.Load, driver model.Driver, kind, mode string, at time.Time) {
	ev := storage.TrackingEvent{
		ID:         uuid.NewString(),
		LoadID:     load.ID,
		Kind:       kind,
		FromStatus: string(load.Status),
		ToStatus:   string(model.StatusScheduled),
		DriverID:   driver.ID,
		Note:       fmt.Sprintf("driver %s bound via %s", driver.ID, mode),
		OccurredAt: at,
	}
	if err := c.loads.AppendEvent(ctx, ev); err != nil {
		c.log.Warnf("append tracking event for load %s: %v", load.ID, err)
	}
	if c.bus != nil {
		c.bus.Publish(events.AssignmentEvent{LoadID: load.ID, DriverID: driver.ID, Mode: mode, At: at})
		c.bus.Publish(events.TransitionEvent{LoadID: load.ID, From: load.Status, To: model.StatusScheduled, At: at})
	}
	if err := c.notifier.NotifyAssignment(ctx, load, driver); err != nil {
		c.log.Warnf("notify assignment for load %s: %v", load.ID, err)
	}
	c.log.Infof("load %s bound to driver %s (%s)", load.ID, driver.ID, kind)
}

func (c *Coordinator) fail(outcome string, err error) error {
	assignmentAttempts.WithLabelValues(outcome).Inc()
	return err
}

func outcomeOf(err error) string {
	var already *AlreadyAssignedError
	var status *StatusIneligibleError
	switch {
	case errors.As(err, &already):
		return "already_assigned"
	case errors.As(err, &status):
		return "status_ineligible"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func notFoundOutcome(err error, entity string) string {
	if errors.Is(err, storage.ErrNotFound) {
		return entity + "_not_found"
	}
	return "error"
}

func ownsVehicle(vehicles []model.Vehicle, vehicleID string) bool {
	for _, v := range vehicles {
		if v.ID == vehicleID {
			return true
		}
	}
	return false
}
