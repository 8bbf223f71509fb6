package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPostgresRepositoryWithDB(mock), mock
}

func TestListDepartmentsActiveOnlyOrderedByName(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := pgxmock.NewRows([]string{"id", "name", "description", "is_active"}).
		AddRow(int64(2), "Cardiology", "Heart care", true).
		AddRow(int64(1), "Dermatology", "", true)
	mock.ExpectQuery("SELECT id, name, COALESCE").WillReturnRows(rows)

	departments, err := repo.ListDepartments(context.Background())
	if err != nil {
		t.Fatalf("list departments failed: %v", err)
	}
	if len(departments) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(departments))
	}
	if departments[0].Name != "Cardiology" || departments[0].Icon != "heart-pulse" {
		t.Fatalf("unexpected first department: %+v", departments[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetDepartmentNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name, COALESCE").WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "is_active"}))

	_, err := repo.GetDepartment(context.Background(), 99)
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func doctorRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "specialization", "is_active", "created_at",
		"dep_id", "dep_name", "dep_description", "dep_is_active",
		"full_name", "email", "phone",
	})
}

func TestListDoctorsFiltersByDepartment(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := doctorRows().AddRow(
		int64(5), "Interventional cardiology", true, created,
		int64(1), "Cardiology", "", true,
		"Dr. Maya Chen", "maya@clinic.example", "+1555000111",
	)
	mock.ExpectQuery("SELECT doc.id").WithArgs(int64(1)).WillReturnRows(rows)

	deptID := int64(1)
	doctors, err := repo.ListDoctors(context.Background(), ListDoctorsFilter{DepartmentID: &deptID})
	if err != nil {
		t.Fatalf("list doctors failed: %v", err)
	}
	if len(doctors) != 1 {
		t.Fatalf("expected 1 doctor, got %d", len(doctors))
	}
	doc := doctors[0]
	if doc.ID != 5 || doc.Department.Name != "Cardiology" || doc.User.FullName != "Dr. Maya Chen" {
		t.Fatalf("unexpected doctor: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListDoctorsSearchAppliesSingleArg(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT doc.id").WithArgs("%chen%").WillReturnRows(doctorRows())

	if _, err := repo.ListDoctors(context.Background(), ListDoctorsFilter{Search: "chen"}); err != nil {
		t.Fatalf("list doctors failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetDoctorNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT doc.id").WithArgs(int64(404)).WillReturnRows(doctorRows())

	_, err := repo.GetDoctor(context.Background(), 404)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}
