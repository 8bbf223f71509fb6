package wizard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harborview/clinic-portal/internal/appointments"
	"github.com/harborview/clinic-portal/internal/directory"
	"github.com/harborview/clinic-portal/internal/identity"
	"github.com/harborview/clinic-portal/internal/observability/metrics"
	"github.com/harborview/clinic-portal/pkg/logging"
)

var wizardTracer = otel.Tracer("portal.internal.wizard")

// Appointments is the slice of the appointments service the wizard needs.
type Appointments interface {
	Book(ctx context.Context, profile identity.Profile, params appointments.CreateParams) (*appointments.Appointment, error)
	DoctorSchedule(ctx context.Context, doctorID int64, start, end time.Time) ([]appointments.Appointment, error)
}

// Service coordinates booking sessions: it loads the session, applies one
// controller operation, bumps the version, saves, and publishes a snapshot.
type Service struct {
	store        SessionStore
	directory    directory.Repository
	appointments Appointments
	slots        SlotConfig
	stream       *SnapshotStream
	metrics      *metrics.PortalMetrics
	logger       *logging.Logger
}

// NewService constructs the wizard service.
func NewService(store SessionStore, dir directory.Repository, appts Appointments, slots SlotConfig, stream *SnapshotStream, m *metrics.PortalMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("wizard: session store required")
	}
	if dir == nil {
		panic("wizard: directory repository required")
	}
	if appts == nil {
		panic("wizard: appointments service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:        store,
		directory:    dir,
		appointments: appts,
		slots:        slots,
		stream:       stream,
		metrics:      m,
		logger:       logger,
	}
}

// StartSession creates a fresh booking session. When deepLinkDoctorID is
// set, the department and doctor are pre-populated from the doctor record
// and the wizard jumps straight to the date/time step.
func (s *Service) StartSession(ctx context.Context, profile identity.Profile, deepLinkDoctorID *int64) (*Session, error) {
	ctrl := NewController()
	if deepLinkDoctorID != nil {
		doctor, err := s.directory.GetDoctor(ctx, *deepLinkDoctorID)
		if err != nil {
			return nil, err
		}
		if err := ctrl.SetDepartment(&doctor.Department); err != nil {
			return nil, err
		}
		if err := ctrl.SetDoctor(doctor); err != nil {
			return nil, err
		}
		if err := ctrl.SetStep(StepDateTime); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		PatientID: profile.ID,
		Selection: ctrl.Selection(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("booking session started",
		"session_id", session.ID,
		"patient_id", profile.ID,
		"step", session.Selection.CurrentStep,
	)
	return session, nil
}

// GetSession loads a session, enforcing ownership.
func (s *Service) GetSession(ctx context.Context, profile identity.Profile, sessionID string) (*Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != profile.ID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// mutate is the single write path: load, check version, apply, save, publish.
func (s *Service) mutate(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64, apply func(*Controller) error) (*Session, error) {
	session, err := s.GetSession(ctx, profile, sessionID)
	if err != nil {
		return nil, err
	}
	if expectVersion > 0 && expectVersion != session.Version {
		return nil, ErrStaleSession
	}

	ctrl := ControllerFor(session.Selection)
	before := ctrl.Selection().CurrentStep
	if err := apply(ctrl); err != nil {
		return nil, err
	}
	session.Selection = ctrl.Selection()
	session.Version++
	session.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	if after := session.Selection.CurrentStep; after != before {
		s.metrics.ObserveStepTransition(string(before), string(after))
	}
	s.stream.Publish(Snapshot{SessionID: session.ID, Version: session.Version, Selection: session.Selection})
	return session, nil
}

// SelectDepartment sets the department and advances to the doctor step in
// one action.
func (s *Service) SelectDepartment(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64, departmentID int64) (*Session, error) {
	department, err := s.directory.GetDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, profile, sessionID, expectVersion, func(ctrl *Controller) error {
		if err := ctrl.SetDepartment(department); err != nil {
			return err
		}
		return ctrl.NextStep()
	})
}

// SelectDoctor sets the doctor and advances to the date/time step.
func (s *Service) SelectDoctor(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64, doctorID int64) (*Session, error) {
	doctor, err := s.directory.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, profile, sessionID, expectVersion, func(ctrl *Controller) error {
		if err := ctrl.SetDoctor(doctor); err != nil {
			return err
		}
		return ctrl.NextStep()
	})
}

// Availability computes the doctor's free slots for a day from the clinic
// grid minus existing non-cancelled appointments.
func (s *Service) Availability(ctx context.Context, profile identity.Profile, sessionID string, date string) ([]time.Time, error) {
	session, err := s.GetSession(ctx, profile, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Selection.Doctor == nil {
		return nil, ErrInvalidTransition
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrMissingField
	}
	busy, err := s.appointments.DoctorSchedule(ctx, session.Selection.Doctor.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return s.slots.FreeSlots(day, busy), nil
}

// SelectDateTime validates the slot against the doctor's availability and
// records it. The step does not auto-advance; the view moves on explicitly.
func (s *Service) SelectDateTime(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64, date string, slot time.Time) (*Session, error) {
	session, err := s.GetSession(ctx, profile, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Selection.Doctor != nil {
		day, parseErr := time.Parse("2006-01-02", date)
		if parseErr != nil {
			return nil, ErrMissingField
		}
		busy, schedErr := s.appointments.DoctorSchedule(ctx, session.Selection.Doctor.ID, day, day.AddDate(0, 0, 1))
		if schedErr != nil {
			return nil, schedErr
		}
		if !s.slots.Contains(day, busy, slot) {
			return nil, ErrSlotUnavailable
		}
	}
	return s.mutate(ctx, profile, sessionID, expectVersion, func(ctrl *Controller) error {
		return ctrl.SetDateTime(date, slot)
	})
}

// SetReason records the optional visit reason.
func (s *Service) SetReason(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64, reason string) (*Session, error) {
	return s.mutate(ctx, profile, sessionID, expectVersion, func(ctrl *Controller) error {
		return ctrl.SetReason(reason)
	})
}

// NextStep advances the wizard one step.
func (s *Service) NextStep(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64) (*Session, error) {
	return s.mutate(ctx, profile, sessionID, expectVersion, func(ctrl *Controller) error {
		return ctrl.NextStep()
	})
}

// PrevStep rewinds the wizard one step.
func (s *Service) PrevStep(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64) (*Session, error) {
	return s.mutate(ctx, profile, sessionID, expectVersion, func(ctrl *Controller) error {
		return ctrl.PrevStep()
	})
}

// Confirm issues the booking creation call. On success the session moves to
// SUCCESS with its selection retained for the success view; on failure the
// session is left exactly as it was.
func (s *Service) Confirm(ctx context.Context, profile identity.Profile, sessionID string, expectVersion int64) (*Session, *appointments.Appointment, error) {
	ctx, span := wizardTracer.Start(ctx, "wizard.confirm")
	defer span.End()
	span.SetAttributes(attribute.String("portal.session_id", sessionID))

	var appt *appointments.Appointment
	session, err := s.mutate(ctx, profile, sessionID, expectVersion, func(ctrl *Controller) error {
		var bookErr error
		appt, bookErr = ctrl.ConfirmBooking(ctx, bookerFunc(func(ctx context.Context, doctorID int64, startTime time.Time, reason string) (*appointments.Appointment, error) {
			return s.appointments.Book(ctx, profile, appointments.CreateParams{
				DoctorID:  doctorID,
				StartTime: startTime,
				Reason:    reason,
			})
		}))
		return bookErr
	})
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	s.logger.Info("booking confirmed",
		"session_id", sessionID,
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
	)
	return session, appt, nil
}

// Reset clears the selection and returns the session to the department step.
func (s *Service) Reset(ctx context.Context, profile identity.Profile, sessionID string) (*Session, error) {
	return s.mutate(ctx, profile, sessionID, 0, func(ctrl *Controller) error {
		ctrl.Reset()
		return nil
	})
}

type bookerFunc func(ctx context.Context, doctorID int64, startTime time.Time, reason string) (*appointments.Appointment, error)

func (f bookerFunc) Book(ctx context.Context, doctorID int64, startTime time.Time, reason string) (*appointments.Appointment, error) {
	return f(ctx, doctorID, startTime, reason)
}
