package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/harborview/clinic-portal/internal/appointments"
	"github.com/harborview/clinic-portal/internal/directory"
	"github.com/harborview/clinic-portal/pkg/logging"
)

// visit time formatting in patient-facing emails.
const visitTimeFormat = "Monday, January 2, 2006 at 3:04 PM"

// Service sends booking lifecycle emails to patients. Sends run off the
// request path; a provider failure is logged, never surfaced to the caller.
type Service struct {
	email       EmailSender
	directory   directory.Repository
	logger      *logging.Logger
	sendTimeout time.Duration

	// synchronous forces in-request sends; tests use it to observe delivery.
	synchronous bool
}

// NewService creates a notification service.
func NewService(email EmailSender, dir directory.Repository, logger *logging.Logger) *Service {
	if email == nil {
		email = NewLogSender(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:       email,
		directory:   dir,
		logger:      logger,
		sendTimeout: 10 * time.Second,
	}
}

// BookingConfirmed emails the patient their new appointment details.
func (s *Service) BookingConfirmed(ctx context.Context, recipient string, appt *appointments.Appointment) {
	if recipient == "" || appt == nil {
		return
	}
	doctorName := s.doctorName(ctx, appt.DoctorID)
	msg := EmailMessage{
		To:      recipient,
		Subject: "Your appointment is confirmed",
		Body: fmt.Sprintf(
			"Your appointment with %s is confirmed for %s.\n\nReason for visit: %s\n\nIf you need to change or cancel, visit your appointments page.",
			doctorName,
			appt.StartTime.Format(visitTimeFormat),
			orNone(appt.Reason),
		),
	}
	s.deliver(ctx, msg, appt.ID)
}

// BookingCancelled emails the patient confirmation of the cancellation.
func (s *Service) BookingCancelled(ctx context.Context, recipient string, appt *appointments.Appointment) {
	if recipient == "" || appt == nil {
		return
	}
	doctorName := s.doctorName(ctx, appt.DoctorID)
	msg := EmailMessage{
		To:      recipient,
		Subject: "Your appointment has been cancelled",
		Body: fmt.Sprintf(
			"Your appointment with %s on %s has been cancelled.\n\nYou can book a new visit any time from the booking page.",
			doctorName,
			appt.StartTime.Format(visitTimeFormat),
		),
	}
	s.deliver(ctx, msg, appt.ID)
}

// deliver hands the message to the provider without blocking the caller.
func (s *Service) deliver(ctx context.Context, msg EmailMessage, apptID int64) {
	send := func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sendTimeout)
		defer cancel()
		if err := s.email.Send(sendCtx, msg); err != nil {
			s.logger.Error("notify: booking email failed", "error", err, "appointment_id", apptID, "to", msg.To)
		}
	}
	if s.synchronous {
		send()
		return
	}
	go send()
}

// doctorName resolves the doctor's display name, falling back to a generic
// label when the lookup fails.
func (s *Service) doctorName(ctx context.Context, doctorID int64) string {
	if s.directory == nil {
		return "your doctor"
	}
	doctor, err := s.directory.GetDoctor(ctx, doctorID)
	if err != nil {
		s.logger.Warn("notify: doctor lookup failed", "error", err, "doctor_id", doctorID)
		return "your doctor"
	}
	return doctor.User.FullName
}

func orNone(reason string) string {
	if reason == "" {
		return "not provided"
	}
	return reason
}

// Ensure the service satisfies the appointments hook.
var _ appointments.Notifier = (*Service)(nil)
