package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the read surface for departments and doctors.
type Repository interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id int64) (*Department, error)
	ListDoctors(ctx context.Context, filter ListDoctorsFilter) ([]Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*Doctor, error)
}

// directoryDB is the pgx query surface needed by the repository.
type directoryDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads directory rows from the relational database.
type PostgresRepository struct {
	db directoryDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("directory: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db directoryDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListDepartments returns active departments ordered by name.
func (r *PostgresRepository) ListDepartments(ctx context.Context) ([]Department, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), is_active
		FROM departments
		WHERE is_active = TRUE
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("directory: list departments: %w", err)
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.IsActive); err != nil {
			return nil, fmt.Errorf("directory: scan department: %w", err)
		}
		d.Icon = IconFor(d.Name)
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate departments: %w", err)
	}
	return departments, nil
}

// GetDepartment fetches a single department by id.
func (r *PostgresRepository) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), is_active
		FROM departments
		WHERE id = $1
	`
	var d Department
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Description, &d.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: get department: %w", err)
	}
	d.Icon = IconFor(d.Name)
	return &d, nil
}

// ListDoctors returns active doctors newest-first, optionally filtered by
// department and a search term. The search term is matched against the
// doctor's specialization, the joined user name, and the department name as
// separate conditions so each stays scoped to its own table.
func (r *PostgresRepository) ListDoctors(ctx context.Context, filter ListDoctorsFilter) ([]Doctor, error) {
	query := `
		SELECT doc.id, doc.specialization, doc.is_active, doc.created_at,
		       dep.id, dep.name, COALESCE(dep.description, ''), dep.is_active,
		       u.full_name, u.email, COALESCE(u.phone, '')
		FROM doctors doc
		JOIN departments dep ON dep.id = doc.department_id
		JOIN users u ON u.id = doc.user_id
		WHERE doc.is_active = TRUE
	`
	var args []any
	argIdx := 1
	if filter.DepartmentID != nil {
		query += fmt.Sprintf(" AND doc.department_id = $%d", argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (doc.specialization ILIKE $%d OR u.full_name ILIKE $%d OR dep.name ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	query += " ORDER BY doc.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		doc, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate doctors: %w", err)
	}
	return doctors, nil
}

// GetDoctor fetches a doctor with full department and user detail.
func (r *PostgresRepository) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	query := `
		SELECT doc.id, doc.specialization, doc.is_active, doc.created_at,
		       dep.id, dep.name, COALESCE(dep.description, ''), dep.is_active,
		       u.full_name, u.email, COALESCE(u.phone, '')
		FROM doctors doc
		JOIN departments dep ON dep.id = doc.department_id
		JOIN users u ON u.id = doc.user_id
		WHERE doc.id = $1
	`
	doc, err := scanDoctor(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var doc Doctor
	err := row.Scan(
		&doc.ID,
		&doc.Specialization,
		&doc.IsActive,
		&doc.CreatedAt,
		&doc.Department.ID,
		&doc.Department.Name,
		&doc.Department.Description,
		&doc.Department.IsActive,
		&doc.User.FullName,
		&doc.User.Email,
		&doc.User.Phone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pgx.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("directory: scan doctor: %w", err)
	}
	doc.Department.Icon = IconFor(doc.Department.Name)
	return &doc, nil
}
