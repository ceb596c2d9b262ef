package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/dispatch"
	coregeo "github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/route"
	infrageo "github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/storage/memory"
)

var apiNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func fixtureStore() *memory.Store {
	s := memory.NewStore()
	s.PutLoad(model.Load{ID: "l1", Status: model.StatusNew, PickupAddress: "lab", DeliveryAddress: "hospital"})
	s.PutDriver(model.Driver{
		ID:                 "d1",
		Status:             model.DriverAvailable,
		CanBeAssignedLoads: true,
		Location:           ptr("depot"),
		CreatedAt:          apiNow.AddDate(-1, 0, 0),
	})
	s.PutVehicle(model.Vehicle{
		ID:                 "veh-1",
		DriverID:           "d1",
		Active:             true,
		RegistrationExpiry: ptr(apiNow.AddDate(1, 0, 0)),
		InsuranceExpiry:    ptr(apiNow.AddDate(1, 0, 0)),
		Maintenance:        model.MaintenanceValid,
	})
	return s
}

func fixtureServer(t *testing.T, store *memory.Store) *httptest.Server {
	t.Helper()
	provider := infrageo.NewStaticProvider(nil)
	provider.Set("depot", "lab", coregeo.Leg{Miles: 3, Minutes: 6})
	provider.Set("lab", "hospital", coregeo.Leg{Miles: 12, Minutes: 20})

	coord, err := dispatch.NewCoordinator(store, store, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	matcher, err := dispatch.NewMatcher(store, store, dispatch.NewScorer(dispatch.Config{}, provider, nil, nil), nil)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	sequencer, err := route.NewSequencer(route.Config{}, provider, nil)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}

	srv := httptest.NewServer(NewRouter(NewHandler(coord, matcher, sequencer, store, store, nil, nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	defer resp.Body.Close()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

func TestAssignEndpoint(t *testing.T) {
	store := fixtureStore()
	srv := fixtureServer(t, store)

	resp := postJSON(t, srv.URL+"/api/loads/l1/assign", assignRequest{DriverID: "d1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	load, _ := store.GetLoad(context.Background(), "l1")
	if load.DriverID == nil || *load.DriverID != "d1" {
		t.Fatal("driver not bound")
	}
}

func TestAssignEndpoint_MissingDriverID(t *testing.T) {
	srv := fixtureServer(t, fixtureStore())

	resp := postJSON(t, srv.URL+"/api/loads/l1/assign", assignRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != "bad_request" {
		t.Fatalf("unexpected code %q", e.Code)
	}
}

func TestAssignEndpoint_Conflict(t *testing.T) {
	store := fixtureStore()
	store.PutDriver(model.Driver{ID: "d2", Status: model.DriverAvailable, CanBeAssignedLoads: true})
	store.PutVehicle(model.Vehicle{
		ID: "veh-2", DriverID: "d2", Active: true,
		RegistrationExpiry: ptr(apiNow.AddDate(1, 0, 0)),
		InsuranceExpiry:    ptr(apiNow.AddDate(1, 0, 0)),
		Maintenance:        model.MaintenanceValid,
	})
	srv := fixtureServer(t, store)

	resp := postJSON(t, srv.URL+"/api/loads/l1/assign", assignRequest{DriverID: "d1"})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/loads/l1/assign", assignRequest{DriverID: "d2"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != "already_assigned" {
		t.Fatalf("unexpected code %q", e.Code)
	}
}

func TestAssignEndpoint_NotFound(t *testing.T) {
	srv := fixtureServer(t, fixtureStore())

	resp := postJSON(t, srv.URL+"/api/loads/missing/assign", assignRequest{DriverID: "d1"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAcceptEndpoint_VehicleNotOwned(t *testing.T) {
	srv := fixtureServer(t, fixtureStore())

	resp := postJSON(t, srv.URL+"/api/loads/l1/accept", acceptRequest{DriverID: "d1", VehicleID: "veh-9"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != "vehicle_not_owned" {
		t.Fatalf("unexpected code %q", e.Code)
	}
}

func TestAcceptEndpoint(t *testing.T) {
	store := fixtureStore()
	srv := fixtureServer(t, store)

	resp := postJSON(t, srv.URL+"/api/loads/l1/accept", acceptRequest{DriverID: "d1", VehicleID: "veh-1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	load, _ := store.GetLoad(context.Background(), "l1")
	if load.VehicleID == nil || *load.VehicleID != "veh-1" || load.AcceptedAt == nil {
		t.Fatal("acceptance not recorded")
	}
}

func TestBestDriverEndpoint(t *testing.T) {
	srv := fixtureServer(t, fixtureStore())

	resp, err := http.Get(srv.URL + "/api/loads/l1/best-driver")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res dispatch.MatchResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Recommended == nil || res.Recommended.Driver.ID != "d1" {
		t.Fatalf("unexpected recommendation %+v", res.Recommended)
	}
}

func TestBestDriverEndpoint_NoneEligibleStillOK(t *testing.T) {
	store := fixtureStore()
	store.PutDriver(model.Driver{ID: "d1", Status: model.DriverOffDuty})
	srv := fixtureServer(t, store)

	resp, err := http.Get(srv.URL + "/api/loads/l1/best-driver")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("the preview stays 200 so the reasons reach the operator, got %d", resp.StatusCode)
	}

	var res dispatch.MatchResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Recommended != nil || len(res.Disqualified) == 0 {
		t.Fatalf("expected only disqualifications, got %+v", res)
	}
}

func TestAutoAssignEndpoint(t *testing.T) {
	store := fixtureStore()
	srv := fixtureServer(t, store)

	resp := postJSON(t, srv.URL+"/api/loads/l1/auto-assign", struct{}{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	load, _ := store.GetLoad(context.Background(), "l1")
	if load.DriverID == nil || *load.DriverID != "d1" {
		t.Fatal("auto-assign did not bind the driver")
	}
}

func TestEventsEndpoint(t *testing.T) {
	store := fixtureStore()
	srv := fixtureServer(t, store)

	resp, err := http.Get(srv.URL + "/api/loads/missing/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown load, got %d", resp.StatusCode)
	}

	postJSON(t, srv.URL+"/api/loads/l1/assign", assignRequest{DriverID: "d1"}).Body.Close()

	resp, err = http.Get(srv.URL + "/api/loads/l1/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var events []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one tracking event, got %d", len(events))
	}
}

func TestSequenceEndpoint(t *testing.T) {
	srv := fixtureServer(t, fixtureStore())

	resp := postJSON(t, srv.URL+"/api/routes/sequence", sequenceRequest{LoadIDs: []string{"l1"}, DriverID: "d1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var plan route.Plan
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Stops) != 2 {
		t.Fatalf("expected pickup and delivery, got %d stops", len(plan.Stops))
	}
	if plan.Stops[0].Kind != route.StopPickup {
		t.Fatalf("route must open with the pickup, got %s", plan.Stops[0].Kind)
	}

	resp = postJSON(t, srv.URL+"/api/routes/sequence", sequenceRequest{LoadIDs: []string{"missing"}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown load, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	srv := fixtureServer(t, fixtureStore())
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
