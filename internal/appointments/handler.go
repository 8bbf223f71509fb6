package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborview/clinic-portal/internal/identity"
	"github.com/harborview/clinic-portal/pkg/logging"
)

// Handler serves appointment reads and the cancel flow. Creation happens only
// through the booking wizard's confirm step.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with appointment routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/cancel", h.Cancel)
	r.Get("/doctor/{doctorID}", h.DoctorSchedule)
	return r
}

// ListMine handles GET /api/appointments.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing profile"}`, http.StatusUnauthorized)
		return
	}
	appts, err := h.service.ListMine(r.Context(), profile)
	if err != nil {
		h.logger.Error("failed to list appointments", "patient_id", profile.ID, "error", err)
		http.Error(w, `{"error":"failed to load appointments"}`, http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// Get handles GET /api/appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing profile"}`, http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid appointment id"}`, http.StatusBadRequest)
		return
	}
	appt, err := h.service.Get(r.Context(), profile, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// CancelRequest is the body for POST /api/appointments/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /api/appointments/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing profile"}`, http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid appointment id"}`, http.StatusBadRequest)
		return
	}
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	appt, err := h.service.Cancel(r.Context(), profile, id, req.Reason)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// DoctorSchedule handles GET /api/appointments/doctor/{doctorID}?start=&end=.
// Dates are YYYY-MM-DD; end is exclusive and defaults to start+1 day.
func (h *Handler) DoctorSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, err := strconv.ParseInt(chi.URLParam(r, "doctorID"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid doctor id"}`, http.StatusBadRequest)
		return
	}
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, `{"error":"start date required as YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	end := start.AddDate(0, 0, 1)
	if endStr := r.URL.Query().Get("end"); endStr != "" {
		if end, err = time.Parse("2006-01-02", endStr); err != nil {
			http.Error(w, `{"error":"invalid end date"}`, http.StatusBadRequest)
			return
		}
	}
	appts, err := h.service.DoctorSchedule(r.Context(), doctorID, start, end)
	if err != nil {
		h.logger.Error("failed to load doctor schedule", "doctor_id", doctorID, "error", err)
		http.Error(w, `{"error":"failed to load schedule"}`, http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrInvalidCancelReason):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrNotOwner):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, ErrNotCancellable), errors.Is(err, ErrSlotTaken):
		writeError(w, http.StatusConflict, err)
	default:
		h.logger.Error("appointment operation failed", "error", err)
		http.Error(w, `{"error":"something went wrong, please try again"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
