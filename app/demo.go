package app

import (
	"time"

	coregeo "github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	infrageo "github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/storage/memory"
)

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }

// SeedDemo fills the store with a small fleet and a few open loads so the
// API can be exercised without a database.
func SeedDemo(store *memory.Store) {
	now := time.Now()
	future := timeptr(now.AddDate(1, 0, 0))

	store.PutDriver(model.Driver{
		ID: "drv-ana", Status: model.DriverAvailable, HazmatCertified: true,
		YearsExperience: 8, Location: strptr("downtown-lab"),
		CanBeAssignedLoads: true, CreatedAt: now.AddDate(-3, 0, 0),
	})
	store.PutDriver(model.Driver{
		ID: "drv-ben", Status: model.DriverAvailable,
		YearsExperience: 2, Location: strptr("north-clinic"),
		CanBeAssignedLoads: true, CreatedAt: now.AddDate(-1, 0, 0),
	})
	store.PutVehicle(model.Vehicle{
		ID: "veh-ana-1", DriverID: "drv-ana", Active: true, Refrigerated: true,
		RegistrationExpiry: future, InsuranceExpiry: future, Maintenance: model.MaintenanceValid,
	})
	store.PutVehicle(model.Vehicle{
		ID: "veh-ben-1", DriverID: "drv-ben", Active: true,
		RegistrationExpiry: future, InsuranceExpiry: future, Maintenance: model.MaintenanceWarning,
	})

	ready := now.Add(30 * time.Minute)
	deadline := now.Add(3 * time.Hour)
	store.PutLoad(model.Load{
		ID: "load-001", TrackingCode: "MD-1001", Status: model.StatusRequested,
		Temperature: model.TempRefrigerated, Hazard: model.HazardUN3373, Tier: model.TierStat,
		PickupAddress: "downtown-lab", DeliveryAddress: "mercy-hospital",
		ReadyAt: &ready, DeadlineAt: &deadline, CreatedAt: now,
	})
	store.PutLoad(model.Load{
		ID: "load-002", TrackingCode: "MD-1002", Status: model.StatusNew,
		Temperature: model.TempAmbient, Hazard: model.HazardNone, Tier: model.TierRoutine,
		PickupAddress: "north-clinic", DeliveryAddress: "central-lab",
		CreatedAt: now,
	})
}

// DemoDistances returns the static travel table used in demo mode.
func DemoDistances() *infrageo.StaticProvider {
	p := infrageo.NewStaticProvider(nil)
	p.Set("downtown-lab", "mercy-hospital", coregeo.Leg{Miles: 4.2, Minutes: 14})
	p.Set("downtown-lab", "north-clinic", coregeo.Leg{Miles: 7.5, Minutes: 22})
	p.Set("downtown-lab", "central-lab", coregeo.Leg{Miles: 3.1, Minutes: 10})
	p.Set("north-clinic", "central-lab", coregeo.Leg{Miles: 6.4, Minutes: 18})
	p.Set("north-clinic", "mercy-hospital", coregeo.Leg{Miles: 9.0, Minutes: 26})
	p.Set("mercy-hospital", "central-lab", coregeo.Leg{Miles: 2.2, Minutes: 8})
	return p
}
