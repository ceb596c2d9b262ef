// Package memory provides an in-process store used by the tests and the
// demo mode. The conditional assignment write is atomic under the store
// mutex, mirroring the guarantees of the SQL implementation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
)

// Store keeps loads, drivers and vehicles in maps.
type Store struct {
	mu       sync.Mutex
	loads    map[string]model.Load
	drivers  map[string]model.Driver
	vehicles map[string][]model.Vehicle // keyed by driver ID
	events   map[string][]storage.TrackingEvent
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		loads:    map[string]model.Load{},
		drivers:  map[string]model.Driver{},
		vehicles: map[string][]model.Vehicle{},
		events:   map[string][]storage.TrackingEvent{},
	}
}

// PutLoad inserts or replaces a load.
func (s *Store) PutLoad(l model.Load) {
	s.mu.Lock()
	s.loads[l.ID] = l
	s.mu.Unlock()
}

// PutDriver inserts or replaces a driver.
func (s *Store) PutDriver(d model.Driver) {
	s.mu.Lock()
	s.drivers[d.ID] = d
	s.mu.Unlock()
}

// PutVehicle attaches a vehicle to its driver.
func (s *Store) PutVehicle(v model.Vehicle) {
	s.mu.Lock()
	s.vehicles[v.DriverID] = append(s.vehicles[v.DriverID], v)
	s.mu.Unlock()
}

func (s *Store) GetLoad(_ context.Context, id string) (model.Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loads[id]
	if !ok {
		return model.Load{}, storage.ErrNotFound
	}
	return l, nil
}

// AssignDriver performs the compare-and-swap style conditional write: it
// takes effect only if the load exists, its status is still in FromStatuses
// and its driver is unset or already the requested one.
func (s *Store) AssignDriver(_ context.Context, w storage.AssignmentWrite) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loads[w.LoadID]
	if !ok {
		return 0, nil
	}
	if !statusIn(l.Status, w.FromStatuses) {
		return 0, nil
	}
	if l.DriverID != nil && *l.DriverID != w.DriverID {
		return 0, nil
	}

	driverID := w.DriverID
	l.DriverID = &driverID
	l.Status = w.ToStatus
	assignedAt := w.AssignedAt
	l.AssignedAt = &assignedAt
	if w.VehicleID != nil {
		vid := *w.VehicleID
		l.VehicleID = &vid
	}
	if w.AcceptedAt != nil {
		acceptedAt := *w.AcceptedAt
		l.AcceptedAt = &acceptedAt
	}
	s.loads[w.LoadID] = l
	return 1, nil
}

func (s *Store) OpenLoadsForDriver(_ context.Context, driverID string) ([]model.Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var open []model.Load
	for _, l := range s.loads {
		if l.DriverID == nil || *l.DriverID != driverID {
			continue
		}
		if l.Status.Terminal() {
			continue
		}
		open = append(open, l)
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	return open, nil
}

func (s *Store) AppendEvent(_ context.Context, ev storage.TrackingEvent) error {
	s.mu.Lock()
	s.events[ev.LoadID] = append(s.events[ev.LoadID], ev)
	s.mu.Unlock()
	return nil
}

func (s *Store) EventsForLoad(_ context.Context, loadID string) ([]storage.TrackingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs := s.events[loadID]
	out := make([]storage.TrackingEvent, len(evs))
	copy(out, evs)
	return out, nil
}

func (s *Store) GetDriver(_ context.Context, id string) (model.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return model.Driver{}, storage.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListDrivers(_ context.Context) ([]model.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) VehiclesForDriver(_ context.Context, driverID string) ([]model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.vehicles[driverID]
	out := make([]model.Vehicle, len(vs))
	copy(out, vs)
	return out, nil
}

func statusIn(s model.LoadStatus, set []model.LoadStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
