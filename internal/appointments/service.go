package appointments

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harborview/clinic-portal/internal/identity"
	"github.com/harborview/clinic-portal/internal/observability/metrics"
	"github.com/harborview/clinic-portal/pkg/logging"
)

var appointmentsTracer = otel.Tracer("portal.internal.appointments")

// Notifier delivers booking lifecycle emails. Implementations must not block
// the request path on provider errors.
type Notifier interface {
	BookingConfirmed(ctx context.Context, recipient string, appt *Appointment)
	BookingCancelled(ctx context.Context, recipient string, appt *Appointment)
}

// Service wraps the repository with validation, ownership checks and telemetry.
type Service struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.PortalMetrics
	logger   *logging.Logger
}

// NewService constructs an appointments service.
func NewService(repo Repository, notifier Notifier, m *metrics.PortalMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, notifier: notifier, metrics: m, logger: logger}
}

// Book creates a scheduled appointment for the authenticated patient.
func (s *Service) Book(ctx context.Context, profile identity.Profile, params CreateParams) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("portal.doctor_id", params.DoctorID),
		attribute.String("portal.patient_id", profile.ID),
	)

	params.PatientID = profile.ID
	start := time.Now()
	appt, err := s.repo.Create(ctx, params)
	s.metrics.ObserveConfirmLatency(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBookingConfirmed("error")
		return nil, err
	}
	s.metrics.ObserveBookingConfirmed("success")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"patient_id", appt.PatientID,
		"start_time", appt.StartTime,
	)
	if s.notifier != nil && profile.Email != "" {
		s.notifier.BookingConfirmed(ctx, profile.Email, appt)
	}
	return appt, nil
}

// Get returns one appointment, enforcing patient ownership.
func (s *Service) Get(ctx context.Context, profile identity.Profile, id int64) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Role == identity.RolePatient && appt.PatientID != profile.ID {
		return nil, ErrNotOwner
	}
	return appt, nil
}

// ListMine returns the authenticated patient's appointments.
func (s *Service) ListMine(ctx context.Context, profile identity.Profile) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, profile.ID)
}

// DoctorSchedule returns a doctor's non-cancelled appointments in [start, end).
func (s *Service) DoctorSchedule(ctx context.Context, doctorID int64, start, end time.Time) ([]Appointment, error) {
	return s.repo.ListByDoctorBetween(ctx, doctorID, start, end)
}

// Cancel marks an appointment cancelled. The reason must come from the fixed
// set; validation failures never reach the repository.
func (s *Service) Cancel(ctx context.Context, profile identity.Profile, id int64, reason string) (*Appointment, error) {
	if !IsValidCancelReason(reason) {
		return nil, ErrInvalidCancelReason
	}

	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.Int64("portal.appointment_id", id))

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if profile.Role == identity.RolePatient && existing.PatientID != profile.ID {
		return nil, ErrNotOwner
	}

	appt, err := s.repo.Cancel(ctx, id, reason)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveCancellation(reason)
	s.logger.Info("appointment cancelled",
		"appointment_id", appt.ID,
		"reason", reason,
		"by", profile.ID,
	)
	if s.notifier != nil && profile.Email != "" {
		s.notifier.BookingCancelled(ctx, profile.Email, appt)
	}
	return appt, nil
}
