package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harborview/clinic-portal/internal/directory"
	"github.com/harborview/clinic-portal/internal/nav"
	"github.com/harborview/clinic-portal/pkg/logging"
)

const testSecret = "router-test-secret"

type fakeDirectory struct{}

func (fakeDirectory) ListDepartments(context.Context) ([]directory.Department, error) {
	return []directory.Department{{ID: 1, Name: "Cardiology", IsActive: true}}, nil
}

func (fakeDirectory) GetDepartment(context.Context, int64) (*directory.Department, error) {
	return &directory.Department{ID: 1, Name: "Cardiology", IsActive: true}, nil
}

func (fakeDirectory) ListDoctors(context.Context, directory.ListDoctorsFilter) ([]directory.Doctor, error) {
	return nil, nil
}

func (fakeDirectory) GetDoctor(context.Context, int64) (*directory.Doctor, error) {
	return nil, directory.ErrDoctorNotFound
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.NewText("error")
	return New(&Config{
		Logger:           logger,
		DirectoryHandler: directory.NewHandler(fakeDirectory{}, logger),
		NavHandler:       nav.NewHandler(),
		MetricsHandler:   http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
		AuthJWTSecret:    testSecret,
	})
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsIsPublic(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/departments", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAPIAcceptsValidToken(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/departments", nil)
	req.Header.Set("Authorization", bearerToken(t, "patient"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNavIsPublicButRoleAware(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nav?path=/dashboard", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 anonymous, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/nav?path=/dashboard", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 authed, got %d", rec.Code)
	}
}
