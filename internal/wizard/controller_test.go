package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harborview/clinic-portal/internal/appointments"
	"github.com/harborview/clinic-portal/internal/directory"
)

var (
	cardiology = &directory.Department{ID: 1, Name: "Cardiology", IsActive: true}
	neurology  = &directory.Department{ID: 2, Name: "Neurology", IsActive: true}

	drChen = &directory.Doctor{
		ID:             5,
		Specialization: "Interventional cardiology",
		Department:     *cardiology,
		User:           directory.DoctorUser{FullName: "Dr. Maya Chen"},
		IsActive:       true,
	}
	drPatel = &directory.Doctor{
		ID:             6,
		Specialization: "Neurophysiology",
		Department:     *neurology,
		User:           directory.DoctorUser{FullName: "Dr. Anil Patel"},
		IsActive:       true,
	}
)

func mustSet(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("setter failed: %v", err)
	}
}

// fills the controller up to the confirm step.
func completeController(t *testing.T) *Controller {
	t.Helper()
	ctrl := NewController()
	mustSet(t, ctrl.SetDepartment(cardiology))
	mustSet(t, ctrl.NextStep())
	mustSet(t, ctrl.SetDoctor(drChen))
	mustSet(t, ctrl.NextStep())
	slot := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	mustSet(t, ctrl.SetDateTime("2024-06-01", slot))
	mustSet(t, ctrl.NextStep())
	return ctrl
}

func TestNextStepRefusedWithoutRequiredField(t *testing.T) {
	ctrl := NewController()
	if err := ctrl.NextStep(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got := ctrl.Selection().CurrentStep; got != StepDepartment {
		t.Fatalf("expected step unchanged, got %s", got)
	}
}

func TestSelectDepartmentAdvancesInOneAction(t *testing.T) {
	ctrl := NewController()
	mustSet(t, ctrl.SetDepartment(cardiology))
	mustSet(t, ctrl.NextStep())

	sel := ctrl.Selection()
	if sel.Department == nil || sel.Department.ID != 1 {
		t.Fatalf("expected cardiology selected, got %+v", sel.Department)
	}
	if sel.CurrentStep != StepDoctor {
		t.Fatalf("expected DOCTOR step, got %s", sel.CurrentStep)
	}
}

func TestChangingDepartmentClearsDependentFields(t *testing.T) {
	ctrl := completeController(t)

	mustSet(t, ctrl.SetDepartment(neurology))
	sel := ctrl.Selection()
	if sel.Doctor != nil {
		t.Fatalf("expected doctor cleared, got %+v", sel.Doctor)
	}
	if sel.Date != "" || sel.TimeSlot != nil {
		t.Fatalf("expected date and slot cleared, got %q %v", sel.Date, sel.TimeSlot)
	}
}

func TestChangingDoctorClearsDateAndSlot(t *testing.T) {
	ctrl := completeController(t)

	other := &directory.Doctor{ID: 9, Department: *cardiology}
	mustSet(t, ctrl.SetDoctor(other))
	sel := ctrl.Selection()
	if sel.Date != "" || sel.TimeSlot != nil {
		t.Fatalf("expected date and slot cleared, got %q %v", sel.Date, sel.TimeSlot)
	}
}

func TestSetDoctorRejectsCrossDepartment(t *testing.T) {
	ctrl := NewController()
	mustSet(t, ctrl.SetDepartment(cardiology))
	if err := ctrl.SetDoctor(drPatel); !errors.Is(err, ErrDepartmentMismatch) {
		t.Fatalf("expected ErrDepartmentMismatch, got %v", err)
	}
}

func TestSetDateTimeRejectsDifferentDay(t *testing.T) {
	ctrl := NewController()
	mustSet(t, ctrl.SetDepartment(cardiology))
	mustSet(t, ctrl.SetDoctor(drChen))

	slot := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	if err := ctrl.SetDateTime("2024-06-01", slot); !errors.Is(err, ErrSlotDateMismatch) {
		t.Fatalf("expected ErrSlotDateMismatch, got %v", err)
	}
}

func TestSettersRejectMissingValues(t *testing.T) {
	ctrl := NewController()
	if err := ctrl.SetDepartment(nil); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for nil department, got %v", err)
	}
	if err := ctrl.SetDoctor(nil); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for nil doctor, got %v", err)
	}
	mustSet(t, ctrl.SetDepartment(cardiology))
	mustSet(t, ctrl.SetDoctor(drChen))
	if err := ctrl.SetDateTime("", time.Time{}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for empty datetime, got %v", err)
	}
}

func TestDeepLinkJumpRequiresDepartmentAndDoctor(t *testing.T) {
	ctrl := NewController()
	if err := ctrl.SetStep(StepDateTime); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected jump refused with empty selection, got %v", err)
	}

	mustSet(t, ctrl.SetDepartment(cardiology))
	if err := ctrl.SetStep(StepDateTime); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected jump refused without doctor, got %v", err)
	}

	mustSet(t, ctrl.SetDoctor(drChen))
	if err := ctrl.SetStep(StepDateTime); err != nil {
		t.Fatalf("expected jump to succeed, got %v", err)
	}
	if got := ctrl.Selection().CurrentStep; got != StepDateTime {
		t.Fatalf("expected DATETIME step, got %s", got)
	}
}

func TestSetStepNeverLandsOnSuccess(t *testing.T) {
	ctrl := completeController(t)
	if err := ctrl.SetStep(StepSuccess); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected jump to SUCCESS refused, got %v", err)
	}
}

func TestNextStepNeverEntersSuccess(t *testing.T) {
	ctrl := completeController(t)
	if err := ctrl.NextStep(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected advance past CONFIRM refused, got %v", err)
	}
	if got := ctrl.Selection().CurrentStep; got != StepConfirm {
		t.Fatalf("expected to stay on CONFIRM, got %s", got)
	}

	// Confirming is still the way through.
	if _, err := ctrl.ConfirmBooking(context.Background(), &countingBooker{}); err != nil {
		t.Fatalf("confirm after refused advance: %v", err)
	}
	if got := ctrl.Selection().CurrentStep; got != StepSuccess {
		t.Fatalf("expected SUCCESS after confirm, got %s", got)
	}
}

func TestResetReturnsToEmptyInitialState(t *testing.T) {
	ctrl := completeController(t)
	mustSet(t, ctrl.SetReason("Checkup"))

	ctrl.Reset()
	sel := ctrl.Selection()
	if sel.Department != nil || sel.Doctor != nil || sel.Date != "" || sel.TimeSlot != nil || sel.Reason != "" {
		t.Fatalf("expected empty selection after reset, got %+v", sel)
	}
	if sel.CurrentStep != StepDepartment {
		t.Fatalf("expected DEPARTMENT step after reset, got %s", sel.CurrentStep)
	}
}

type countingBooker struct {
	calls    int
	lastSlot time.Time
	lastDoc  int64
	appt     *appointments.Appointment
	err      error
}

func (b *countingBooker) Book(_ context.Context, doctorID int64, startTime time.Time, reason string) (*appointments.Appointment, error) {
	b.calls++
	b.lastDoc = doctorID
	b.lastSlot = startTime
	if b.err != nil {
		return nil, b.err
	}
	if b.appt == nil {
		b.appt = &appointments.Appointment{ID: 1, DoctorID: doctorID, StartTime: startTime, Status: appointments.StatusScheduled, Reason: reason}
	}
	return b.appt, nil
}

func TestConfirmBookingIssuesOneCallAndMovesToSuccess(t *testing.T) {
	ctrl := completeController(t)
	mustSet(t, ctrl.SetReason("Checkup"))

	booker := &countingBooker{}
	appt, err := ctrl.ConfirmBooking(context.Background(), booker)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if booker.calls != 1 {
		t.Fatalf("expected exactly one creation call, got %d", booker.calls)
	}
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	if !booker.lastSlot.Equal(want) || booker.lastDoc != 5 {
		t.Fatalf("unexpected creation args: doctor=%d slot=%s", booker.lastDoc, booker.lastSlot)
	}
	if appt.Reason != "Checkup" {
		t.Fatalf("expected reason forwarded, got %q", appt.Reason)
	}

	sel := ctrl.Selection()
	if sel.CurrentStep != StepSuccess {
		t.Fatalf("expected SUCCESS step, got %s", sel.CurrentStep)
	}
	// Selection is retained for the success view.
	if sel.Doctor == nil || sel.Doctor.ID != 5 || sel.TimeSlot == nil {
		t.Fatalf("expected selection retained, got %+v", sel)
	}
}

func TestConfirmBookingFailureKeepsConfirmStep(t *testing.T) {
	ctrl := completeController(t)
	booker := &countingBooker{err: errors.New("backend rejected")}

	if _, err := ctrl.ConfirmBooking(context.Background(), booker); err == nil {
		t.Fatal("expected confirm error")
	}
	sel := ctrl.Selection()
	if sel.CurrentStep != StepConfirm {
		t.Fatalf("expected CONFIRM step retained, got %s", sel.CurrentStep)
	}
	if sel.Doctor == nil || sel.TimeSlot == nil {
		t.Fatalf("expected selection untouched, got %+v", sel)
	}

	// Retry reaches the backend again with equivalent arguments.
	booker.err = nil
	if _, err := ctrl.ConfirmBooking(context.Background(), booker); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if booker.calls != 2 {
		t.Fatalf("expected two attempts, got %d", booker.calls)
	}
}

func TestConfirmBookingIncompleteSelection(t *testing.T) {
	ctrl := NewController()
	mustSet(t, ctrl.SetDepartment(cardiology))
	booker := &countingBooker{}

	if _, err := ctrl.ConfirmBooking(context.Background(), booker); !errors.Is(err, ErrIncompleteSelection) {
		t.Fatalf("expected ErrIncompleteSelection, got %v", err)
	}
	if booker.calls != 0 {
		t.Fatalf("expected no creation call, got %d", booker.calls)
	}
}

func TestPrevStepRewindsWithoutClearing(t *testing.T) {
	ctrl := completeController(t)
	mustSet(t, ctrl.PrevStep())

	sel := ctrl.Selection()
	if sel.CurrentStep != StepDateTime {
		t.Fatalf("expected DATETIME step, got %s", sel.CurrentStep)
	}
	if sel.TimeSlot == nil {
		t.Fatal("expected slot retained on rewind")
	}
}

func TestPrevStepRefusedAtStartAndAfterSuccess(t *testing.T) {
	ctrl := NewController()
	if err := ctrl.PrevStep(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected rewind refused at first step, got %v", err)
	}

	ctrl = completeController(t)
	if _, err := ctrl.ConfirmBooking(context.Background(), &countingBooker{}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := ctrl.PrevStep(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected rewind refused after success, got %v", err)
	}
}
