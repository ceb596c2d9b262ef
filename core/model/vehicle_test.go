package model

import (
	"testing"
	"time"
)

func ptr(t time.Time) *time.Time { return &t }

func TestVehicle_DocumentsCompliant(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := ptr(now.Add(24 * time.Hour))
	past := ptr(now.Add(-time.Hour))

	v := Vehicle{RegistrationExpiry: future, InsuranceExpiry: future}
	if !v.DocumentsCompliant(now) {
		t.Error("future expiries should be compliant")
	}

	v.InsuranceExpiry = past
	if v.DocumentsCompliant(now) {
		t.Error("expired insurance should not be compliant")
	}

	v.InsuranceExpiry = nil
	if v.DocumentsCompliant(now) {
		t.Error("missing expiry date should not be compliant")
	}

	v = Vehicle{RegistrationExpiry: ptr(now), InsuranceExpiry: future}
	if v.DocumentsCompliant(now) {
		t.Error("expiry equal to now is already expired")
	}
}

func TestVehicle_MaintenanceCompliant(t *testing.T) {
	if !(Vehicle{Maintenance: MaintenanceValid}).MaintenanceCompliant() {
		t.Error("VALID should pass")
	}
	if !(Vehicle{Maintenance: MaintenanceWarning}).MaintenanceCompliant() {
		t.Error("WARNING should still pass")
	}
	if (Vehicle{Maintenance: MaintenanceDue}).MaintenanceCompliant() {
		t.Error("DUE should block dispatch")
	}
}

func TestVehicle_Compliant(t *testing.T) {
	now := time.Now()
	future := ptr(now.Add(24 * time.Hour))
	v := Vehicle{Active: true, RegistrationExpiry: future, InsuranceExpiry: future, Maintenance: MaintenanceValid}
	if !v.Compliant(now) {
		t.Error("active vehicle with valid documents should be compliant")
	}
	v.Active = false
	if v.Compliant(now) {
		t.Error("inactive vehicle is never compliant")
	}
}
