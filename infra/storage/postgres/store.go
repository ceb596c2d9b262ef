// Package postgres implements the storage ports on PostgreSQL via pgx. The
// assignment write is a single conditional UPDATE; its WHERE clause is what
// makes concurrent assignment attempts mutually exclusive.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
)

// Store is a pgxpool-backed implementation of the storage ports.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store over an existing pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Connect opens a pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func (s *Store) GetLoad(ctx context.Context, id string) (model.Load, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, tracking_code, status, temperature, hazard, tier,
               pickup_address, delivery_address, ready_at, deadline_at,
               driver_id, vehicle_id, assigned_at, accepted_at, created_at
        FROM loads
        WHERE id = $1
    `, id)

	var l model.Load
	err := row.Scan(&l.ID, &l.TrackingCode, &l.Status, &l.Temperature, &l.Hazard, &l.Tier,
		&l.PickupAddress, &l.DeliveryAddress, &l.ReadyAt, &l.DeadlineAt,
		&l.DriverID, &l.VehicleID, &l.AssignedAt, &l.AcceptedAt, &l.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return model.Load{}, storage.ErrNotFound
		}
		return model.Load{}, fmt.Errorf("get load: %w", err)
	}
	return l, nil
}

// AssignDriver issues the conditional write. Zero affected rows means the
// precondition no longer held at write time; the caller re-reads and
// classifies. A plain read-then-write here would reintroduce the assignment
// race, so the condition must stay inside the UPDATE.
func (s *Store) AssignDriver(ctx context.Context, w storage.AssignmentWrite) (int64, error) {
	statuses := make([]string, len(w.FromStatuses))
	for i, st := range w.FromStatuses {
		statuses[i] = string(st)
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE loads
        SET driver_id = $2,
            vehicle_id = COALESCE($3, vehicle_id),
            status = $4,
            assigned_at = $5,
            accepted_at = COALESCE($6, accepted_at)
        WHERE id = $1
          AND (driver_id IS NULL OR driver_id = $2)
          AND status = ANY($7)
    `, w.LoadID, w.DriverID, w.VehicleID, string(w.ToStatus), w.AssignedAt, w.AcceptedAt, statuses)
	if err != nil {
		return 0, fmt.Errorf("assign driver: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) OpenLoadsForDriver(ctx context.Context, driverID string) ([]model.Load, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, tracking_code, status, temperature, hazard, tier,
               pickup_address, delivery_address, ready_at, deadline_at,
               driver_id, vehicle_id, assigned_at, accepted_at, created_at
        FROM loads
        WHERE driver_id = $1
          AND status NOT IN ('DELIVERED', 'COMPLETED', 'CANCELLED', 'DENIED')
        ORDER BY id
    `, driverID)
	if err != nil {
		return nil, fmt.Errorf("open loads: %w", err)
	}
	defer rows.Close()

	var open []model.Load
	for rows.Next() {
		var l model.Load
		if err := rows.Scan(&l.ID, &l.TrackingCode, &l.Status, &l.Temperature, &l.Hazard, &l.Tier,
			&l.PickupAddress, &l.DeliveryAddress, &l.ReadyAt, &l.DeadlineAt,
			&l.DriverID, &l.VehicleID, &l.AssignedAt, &l.AcceptedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		open = append(open, l)
	}
	return open, rows.Err()
}

func (s *Store) AppendEvent(ctx context.Context, ev storage.TrackingEvent) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO load_events (id, load_id, kind, from_status, to_status, driver_id, note, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, ev.ID, ev.LoadID, ev.Kind, ev.FromStatus, ev.ToStatus, ev.DriverID, ev.Note, ev.OccurredAt)
	if err != nil {
		// A replayed event ID means the entry already landed.
		if IsDuplicate(err) {
			return nil
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *Store) EventsForLoad(ctx context.Context, loadID string) ([]storage.TrackingEvent, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, load_id, kind, from_status, to_status, driver_id, note, occurred_at, recorded_at
        FROM load_events
        WHERE load_id = $1
        ORDER BY occurred_at, id
    `, loadID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	var evs []storage.TrackingEvent
	for rows.Next() {
		var ev storage.TrackingEvent
		if err := rows.Scan(&ev.ID, &ev.LoadID, &ev.Kind, &ev.FromStatus, &ev.ToStatus,
			&ev.DriverID, &ev.Note, &ev.OccurredAt, &ev.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}

func (s *Store) GetDriver(ctx context.Context, id string) (model.Driver, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, status, hazmat_certified, years_experience, location,
               can_be_assigned_loads, created_at
        FROM drivers
        WHERE id = $1
    `, id)

	var d model.Driver
	err := row.Scan(&d.ID, &d.Status, &d.HazmatCertified, &d.YearsExperience, &d.Location,
		&d.CanBeAssignedLoads, &d.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return model.Driver{}, storage.ErrNotFound
		}
		return model.Driver{}, fmt.Errorf("get driver: %w", err)
	}
	return d, nil
}

func (s *Store) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, status, hazmat_certified, years_experience, location,
               can_be_assigned_loads, created_at
        FROM drivers
        ORDER BY created_at, id
    `)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []model.Driver
	for rows.Next() {
		var d model.Driver
		if err := rows.Scan(&d.ID, &d.Status, &d.HazmatCertified, &d.YearsExperience, &d.Location,
			&d.CanBeAssignedLoads, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (s *Store) VehiclesForDriver(ctx context.Context, driverID string) ([]model.Vehicle, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, driver_id, active, refrigerated,
               registration_expiry, insurance_expiry, maintenance
        FROM vehicles
        WHERE driver_id = $1
        ORDER BY id
    `, driverID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.DriverID, &v.Active, &v.Refrigerated,
			&v.RegistrationExpiry, &v.InsuranceExpiry, &v.Maintenance); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}
