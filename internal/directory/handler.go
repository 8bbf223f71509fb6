package directory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harborview/clinic-portal/pkg/logging"
)

// Handler serves department and doctor reads.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a directory HTTP handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes returns a chi router with directory read routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/departments", h.ListDepartments)
	r.Get("/departments/{id}", h.GetDepartment)
	r.Get("/doctors", h.ListDoctors)
	r.Get("/doctors/{id}", h.GetDoctor)
	return r
}

// ListDepartments handles GET /api/departments.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.repo.ListDepartments(r.Context())
	if err != nil {
		h.logger.Error("failed to list departments", "error", err)
		http.Error(w, `{"error":"failed to load departments"}`, http.StatusInternalServerError)
		return
	}
	if departments == nil {
		departments = []Department{}
	}
	writeJSON(w, http.StatusOK, departments)
}

// GetDepartment handles GET /api/departments/{id}.
func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid department id"}`, http.StatusBadRequest)
		return
	}
	department, err := h.repo.GetDepartment(r.Context(), id)
	if errors.Is(err, ErrDepartmentNotFound) {
		http.Error(w, `{"error":"department not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get department", "id", id, "error", err)
		http.Error(w, `{"error":"failed to load department"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, department)
}

// ListDoctors handles GET /api/doctors?departmentId=&search=.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	var filter ListDoctorsFilter
	if deptStr := r.URL.Query().Get("departmentId"); deptStr != "" {
		deptID, err := parseID(deptStr)
		if err != nil {
			http.Error(w, `{"error":"invalid departmentId"}`, http.StatusBadRequest)
			return
		}
		filter.DepartmentID = &deptID
	}
	filter.Search = r.URL.Query().Get("search")

	doctors, err := h.repo.ListDoctors(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, `{"error":"failed to load doctors"}`, http.StatusInternalServerError)
		return
	}
	if doctors == nil {
		doctors = []Doctor{}
	}
	writeJSON(w, http.StatusOK, doctors)
}

// GetDoctor handles GET /api/doctors/{id}.
func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid doctor id"}`, http.StatusBadRequest)
		return
	}
	doctor, err := h.repo.GetDoctor(r.Context(), id)
	if errors.Is(err, ErrDoctorNotFound) {
		http.Error(w, `{"error":"doctor not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get doctor", "id", id, "error", err)
		http.Error(w, `{"error":"failed to load doctor"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
