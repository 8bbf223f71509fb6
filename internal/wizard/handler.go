package wizard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborview/clinic-portal/internal/appointments"
	"github.com/harborview/clinic-portal/internal/directory"
	"github.com/harborview/clinic-portal/internal/identity"
	"github.com/harborview/clinic-portal/pkg/logging"
)

// Handler exposes the booking wizard over HTTP. Every mutation returns the
// updated session so the calling view can re-render from the fresh snapshot.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the wizard HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with booking session routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/sessions", h.StartSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/department", h.SelectDepartment)
		r.Post("/doctor", h.SelectDoctor)
		r.Get("/availability", h.Availability)
		r.Post("/datetime", h.SelectDateTime)
		r.Post("/reason", h.SetReason)
		r.Post("/next", h.NextStep)
		r.Post("/back", h.PrevStep)
		r.Post("/confirm", h.Confirm)
		r.Post("/reset", h.Reset)
	})
	return r
}

// StartSession handles POST /api/booking/sessions[?doctorId=].
// The doctorId query parameter is the deep-link entry: it pre-populates the
// department and doctor and jumps straight to the date/time step.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing profile"}`, http.StatusUnauthorized)
		return
	}
	var deepLink *int64
	if doctorStr := r.URL.Query().Get("doctorId"); doctorStr != "" {
		doctorID, err := strconv.ParseInt(doctorStr, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid doctorId"}`, http.StatusBadRequest)
			return
		}
		deepLink = &doctorID
	}
	session, err := h.service.StartSession(r.Context(), profile, deepLink)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// GetSession handles GET /api/booking/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.GetSession(r.Context(), profile, sessionID)
	})
}

type selectDepartmentRequest struct {
	DepartmentID int64 `json:"department_id"`
	Version      int64 `json:"version,omitempty"`
}

// SelectDepartment handles POST .../department. Selection and advance are a
// single action, as on the department step's UI.
func (h *Handler) SelectDepartment(w http.ResponseWriter, r *http.Request) {
	var req selectDepartmentRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.SelectDepartment(r.Context(), profile, sessionID, req.Version, req.DepartmentID)
	})
}

type selectDoctorRequest struct {
	DoctorID int64 `json:"doctor_id"`
	Version  int64 `json:"version,omitempty"`
}

// SelectDoctor handles POST .../doctor.
func (h *Handler) SelectDoctor(w http.ResponseWriter, r *http.Request) {
	var req selectDoctorRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.SelectDoctor(r.Context(), profile, sessionID, req.Version, req.DoctorID)
	})
}

// Availability handles GET .../availability?date=YYYY-MM-DD.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing profile"}`, http.StatusUnauthorized)
		return
	}
	slots, err := h.service.Availability(r.Context(), profile, chi.URLParam(r, "sessionID"), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if slots == nil {
		slots = []time.Time{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

type selectDateTimeRequest struct {
	Date     string    `json:"date"`
	TimeSlot time.Time `json:"time_slot"`
	Version  int64     `json:"version,omitempty"`
}

// SelectDateTime handles POST .../datetime.
func (h *Handler) SelectDateTime(w http.ResponseWriter, r *http.Request) {
	var req selectDateTimeRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.SelectDateTime(r.Context(), profile, sessionID, req.Version, req.Date, req.TimeSlot)
	})
}

type setReasonRequest struct {
	Reason  string `json:"reason"`
	Version int64  `json:"version,omitempty"`
}

// SetReason handles POST .../reason.
func (h *Handler) SetReason(w http.ResponseWriter, r *http.Request) {
	var req setReasonRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.SetReason(r.Context(), profile, sessionID, req.Version, req.Reason)
	})
}

type stepRequest struct {
	Version int64 `json:"version,omitempty"`
}

// NextStep handles POST .../next.
func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if !decodeOptional(r, &req) {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.NextStep(r.Context(), profile, sessionID, req.Version)
	})
}

// PrevStep handles POST .../back.
func (h *Handler) PrevStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if !decodeOptional(r, &req) {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.PrevStep(r.Context(), profile, sessionID, req.Version)
	})
}

// ConfirmResponse carries the session and the created appointment.
type ConfirmResponse struct {
	Session     *Session                  `json:"session"`
	Appointment *appointments.Appointment `json:"appointment"`
}

// Confirm handles POST .../confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing profile"}`, http.StatusUnauthorized)
		return
	}
	var req stepRequest
	if !decodeOptional(r, &req) {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	session, appt, err := h.service.Confirm(r.Context(), profile, chi.URLParam(r, "sessionID"), req.Version)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ConfirmResponse{Session: session, Appointment: appt})
}

// Reset handles POST .../reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(profile identity.Profile, sessionID string) (*Session, error) {
		return h.service.Reset(r.Context(), profile, sessionID)
	})
}

func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, op func(identity.Profile, string) (*Session, error)) {
	profile, ok := identity.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing profile"}`, http.StatusUnauthorized)
		return
	}
	session, err := op(profile, chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, directory.ErrDepartmentNotFound),
		errors.Is(err, directory.ErrDoctorNotFound):
		writeErrorJSON(w, http.StatusNotFound, err)
	case errors.Is(err, ErrNotSessionOwner):
		writeErrorJSON(w, http.StatusForbidden, err)
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrIncompleteSelection),
		errors.Is(err, ErrStaleSession):
		writeErrorJSON(w, http.StatusConflict, err)
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrDepartmentMismatch),
		errors.Is(err, ErrSlotDateMismatch),
		errors.Is(err, ErrSlotUnavailable):
		writeErrorJSON(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, appointments.ErrSlotTaken):
		writeErrorJSON(w, http.StatusConflict, err)
	default:
		h.logger.Error("wizard operation failed", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, errors.New("something went wrong, please try again"))
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptional tolerates an empty body.
func decodeOptional(r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	return err == nil || errors.Is(err, io.EOF)
}

func writeErrorJSON(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
