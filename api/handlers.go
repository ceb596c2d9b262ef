package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/dispatch"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/events"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/route"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/internal/eventbus"
)

// Handler bundles the engine components the HTTP layer calls into.
type Handler struct {
	coordinator *dispatch.Coordinator
	matcher     *dispatch.Matcher
	sequencer   *route.Sequencer
	loads       storage.LoadStore
	drivers     storage.DriverStore
	bus         eventbus.EventBus
	log         logger.Logger
}

// NewHandler creates the handler set. The bus may be nil.
func NewHandler(coordinator *dispatch.Coordinator, matcher *dispatch.Matcher, sequencer *route.Sequencer, loads storage.LoadStore, drivers storage.DriverStore, bus eventbus.EventBus, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{
		coordinator: coordinator,
		matcher:     matcher,
		sequencer:   sequencer,
		loads:       loads,
		drivers:     drivers,
		bus:         bus,
		log:         log,
	}
}

type assignRequest struct {
	DriverID string `json:"driver_id"`
}

type acceptRequest struct {
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
}

type sequenceRequest struct {
	LoadIDs  []string `json:"load_ids"`
	DriverID string   `json:"driver_id,omitempty"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

// Assign handles the explicit admin assignment of a driver to a load.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	loadID := chi.URLParam(r, "loadID")
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DriverID == "" {
		badRequest(w, "driver_id is required")
		return
	}
	if err := h.coordinator.Assign(r.Context(), loadID, req.DriverID, dispatch.ModeManual); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"load_id": loadID, "driver_id": req.DriverID, "status": string(model.StatusScheduled)})
}

// AutoAssign matches and binds the best eligible driver.
func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	loadID := chi.URLParam(r, "loadID")
	res, err := h.matcher.AutoAssign(r.Context(), h.coordinator, loadID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Accept records a driver's confirmation of a load.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	loadID := chi.URLParam(r, "loadID")
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DriverID == "" || req.VehicleID == "" {
		badRequest(w, "driver_id and vehicle_id are required")
		return
	}
	if err := h.coordinator.Accept(r.Context(), loadID, req.DriverID, req.VehicleID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"load_id": loadID, "driver_id": req.DriverID, "status": string(model.StatusScheduled)})
}

// BestDriver previews the ranked candidates for a load without side effects.
func (h *Handler) BestDriver(w http.ResponseWriter, r *http.Request) {
	loadID := chi.URLParam(r, "loadID")
	res, err := h.matcher.FindBestDriver(r.Context(), loadID)
	if err != nil && !errors.Is(err, dispatch.ErrNoEligibleDriver) {
		h.writeError(w, err)
		return
	}
	// NoEligibleDriver still returns the disqualification list so the
	// operator can see why every driver was skipped.
	writeJSON(w, http.StatusOK, res)
}

// Events returns the load's audit trail.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	loadID := chi.URLParam(r, "loadID")
	if _, err := h.loads.GetLoad(r.Context(), loadID); err != nil {
		h.writeError(w, err)
		return
	}
	evs, err := h.loads.EventsForLoad(r.Context(), loadID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// SequenceRoute orders the stops of a batch of loads for one driver.
func (h *Handler) SequenceRoute(w http.ResponseWriter, r *http.Request) {
	var req sequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.LoadIDs) == 0 {
		badRequest(w, "load_ids is required")
		return
	}

	loads := make([]model.Load, 0, len(req.LoadIDs))
	for _, id := range req.LoadIDs {
		l, err := h.loads.GetLoad(r.Context(), id)
		if err != nil {
			h.writeError(w, fmt.Errorf("load %s: %w", id, err))
			return
		}
		loads = append(loads, l)
	}

	var origin *string
	if req.DriverID != "" {
		d, err := h.drivers.GetDriver(r.Context(), req.DriverID)
		if err != nil {
			h.writeError(w, fmt.Errorf("driver %s: %w", req.DriverID, err))
			return
		}
		origin = d.Location
	}

	plan, err := h.sequencer.Sequence(r.Context(), loads, origin)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if h.bus != nil {
		h.bus.Publish(events.RoutePlanEvent{
			DriverID:   req.DriverID,
			Stops:      len(plan.Stops),
			TotalMiles: plan.TotalMiles,
			Failures:   len(plan.Failures),
			At:         time.Now(),
		})
	}
	writeJSON(w, http.StatusOK, plan)
}

// writeError maps the engine's error taxonomy onto HTTP responses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var already *dispatch.AlreadyAssignedError
	var ineligible *dispatch.StatusIneligibleError
	var disqualified *dispatch.DisqualifiedError

	switch {
	case errors.As(err, &already):
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:    "already_assigned",
			Message: fmt.Sprintf("load is already assigned to driver %s", already.HolderID),
		})
	case errors.As(err, &ineligible):
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:    "status_ineligible",
			Message: fmt.Sprintf("load status %s does not permit this operation", ineligible.Status),
		})
	case errors.As(err, &disqualified):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "disqualified",
			Message: fmt.Sprintf("driver %s fails eligibility", disqualified.DriverID),
			Reasons: dispatch.Details(disqualified.Reasons),
		})
	case errors.Is(err, dispatch.ErrVehicleNotOwned):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "vehicle_not_owned",
			Message: "vehicle does not belong to the accepting driver",
		})
	case errors.Is(err, dispatch.ErrNoEligibleDriver):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "no_eligible_driver",
			Message: "every candidate driver was disqualified",
		})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: err.Error()})
	default:
		h.log.Errorf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal", Message: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
