package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines appointment persistence.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]Appointment, error)
	ListByDoctorBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]Appointment, error)
	Cancel(ctx context.Context, id int64, reason string) (*Appointment, error)
}

// appointmentsDB is the pgx surface needed by the repository.
type appointmentsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db appointmentsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db appointmentsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, start_time, status, COALESCE(reason, ''), COALESCE(cancel_reason, ''), created_at`

// Create inserts a scheduled appointment. A unique index on
// (doctor_id, start_time) where status <> 'cancelled' backs the slot guard.
// When the conflicting appointment already belongs to the same patient the
// existing row is returned, so a retried confirmation resolves to the booking
// it made rather than a slot conflict.
func (r *PostgresRepository) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, start_time, status, reason)
		VALUES ($1, $2, $3, 'scheduled', $4)
		RETURNING ` + appointmentColumns
	appt, err := scanAppointment(r.db.QueryRow(ctx, query,
		params.PatientID,
		params.DoctorID,
		params.StartTime,
		params.Reason,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.existingForPatient(ctx, params)
		}
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return appt, nil
}

// existingForPatient resolves a slot conflict against the row that holds the
// slot. Only the slot holder's own retry maps to that row; anyone else gets
// ErrSlotTaken.
func (r *PostgresRepository) existingForPatient(ctx context.Context, params CreateParams) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1 AND start_time = $2 AND status <> 'cancelled'`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, params.DoctorID, params.StartTime))
	if err != nil {
		return nil, ErrSlotTaken
	}
	if appt.PatientID != params.PatientID {
		return nil, ErrSlotTaken
	}
	return appt, nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get by id: %w", err)
	}
	return appt, nil
}

// ListByPatient returns all of a patient's appointments, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_time DESC
	`
	return r.list(ctx, query, patientID)
}

// ListByDoctorBetween returns a doctor's non-cancelled appointments with
// start_time in [start, end).
func (r *PostgresRepository) ListByDoctorBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		  AND status <> 'cancelled'
		ORDER BY start_time
	`
	return r.list(ctx, query, doctorID, start, end)
}

// Cancel marks a scheduled appointment cancelled with the given reason.
func (r *PostgresRepository) Cancel(ctx context.Context, id int64, reason string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelled', cancel_reason = $2
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + appointmentColumns
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id, reason))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either missing or already past 'scheduled'; let the caller decide.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotCancellable
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: cancel failed: %w", err)
	}
	return appt, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: query failed: %w", err)
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		appts = append(appts, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate failed: %w", err)
	}
	return appts, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.DoctorID,
		&appt.StartTime,
		&appt.Status,
		&appt.Reason,
		&appt.CancelReason,
		&appt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
