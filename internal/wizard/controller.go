package wizard

import (
	"context"
	"strings"
	"time"

	"github.com/harborview/clinic-portal/internal/appointments"
	"github.com/harborview/clinic-portal/internal/directory"
)

// Booker issues the single creation call behind confirm.
type Booker interface {
	Book(ctx context.Context, doctorID int64, startTime time.Time, reason string) (*appointments.Appointment, error)
}

// Controller owns one session's Selection for the lifetime of a booking.
// All writes go through its setters; setting a higher-level field clears the
// dependent lower ones so a stale cross-department choice cannot survive.
type Controller struct {
	sel Selection
}

// NewController starts a fresh selection at the department step.
func NewController() *Controller {
	return &Controller{sel: emptySelection()}
}

// ControllerFor resumes an existing selection.
func ControllerFor(sel Selection) *Controller {
	if sel.CurrentStep == "" {
		sel.CurrentStep = StepDepartment
	}
	return &Controller{sel: sel}
}

// Selection returns a snapshot copy of the current selection.
func (c *Controller) Selection() Selection {
	return c.sel
}

// SetDepartment records the department and invalidates doctor, date and
// time slot.
func (c *Controller) SetDepartment(d *directory.Department) error {
	if d == nil {
		return ErrMissingField
	}
	c.sel.Department = d
	c.sel.Doctor = nil
	c.sel.Date = ""
	c.sel.TimeSlot = nil
	return nil
}

// SetDoctor records the doctor and invalidates date and time slot. The
// doctor must belong to the selected department.
func (c *Controller) SetDoctor(d *directory.Doctor) error {
	if d == nil {
		return ErrMissingField
	}
	if c.sel.Department == nil {
		return ErrInvalidTransition
	}
	if d.Department.ID != c.sel.Department.ID {
		return ErrDepartmentMismatch
	}
	c.sel.Doctor = d
	c.sel.Date = ""
	c.sel.TimeSlot = nil
	return nil
}

// SetDateTime records the visit date and time slot. The slot must fall on
// the same calendar day as the date.
func (c *Controller) SetDateTime(date string, slot time.Time) error {
	if date == "" || slot.IsZero() {
		return ErrMissingField
	}
	if c.sel.Doctor == nil {
		return ErrInvalidTransition
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ErrMissingField
	}
	if !sameDay(day, slot) {
		return ErrSlotDateMismatch
	}
	c.sel.Date = date
	slotUTC := slot.UTC()
	c.sel.TimeSlot = &slotUTC
	return nil
}

// SetReason records the optional visit reason.
func (c *Controller) SetReason(text string) error {
	c.sel.Reason = strings.TrimSpace(text)
	return nil
}

// NextStep advances to the following step once the current step's required
// field is set. SUCCESS is terminal and is never entered here: the only way
// past CONFIRM is a successful ConfirmBooking.
func (c *Controller) NextStep() error {
	idx := stepIndex(c.sel.CurrentStep)
	if idx < 0 || c.sel.CurrentStep == StepSuccess || c.sel.CurrentStep == StepConfirm {
		return ErrInvalidTransition
	}
	if !c.sel.requiredFieldSet(c.sel.CurrentStep) {
		return ErrInvalidTransition
	}
	c.sel.CurrentStep = stepOrder[idx+1]
	return nil
}

// PrevStep rewinds one step. Rewinding never clears fields; it only moves
// the pointer. SUCCESS cannot be rewound out of.
func (c *Controller) PrevStep() error {
	idx := stepIndex(c.sel.CurrentStep)
	if idx <= 0 || c.sel.CurrentStep == StepSuccess {
		return ErrInvalidTransition
	}
	c.sel.CurrentStep = stepOrder[idx-1]
	return nil
}

// SetStep jumps directly to a step, used by the deep-link entry. The jump is
// only allowed when every earlier step's required field is already set, and
// never lands on SUCCESS.
func (c *Controller) SetStep(step Step) error {
	target := stepIndex(step)
	if target < 0 || step == StepSuccess {
		return ErrInvalidTransition
	}
	for i := 0; i < target; i++ {
		if !c.sel.requiredFieldSet(stepOrder[i]) {
			return ErrInvalidTransition
		}
	}
	c.sel.CurrentStep = step
	return nil
}

// Reset clears the selection and returns to the department step.
func (c *Controller) Reset() {
	c.sel = emptySelection()
}

// ConfirmBooking issues exactly one creation call. On success the wizard
// moves to SUCCESS and the selection is retained for the success view; on
// failure the step and selection are untouched so the user can retry.
func (c *Controller) ConfirmBooking(ctx context.Context, booker Booker) (*appointments.Appointment, error) {
	if !c.sel.complete() {
		return nil, ErrIncompleteSelection
	}
	appt, err := booker.Book(ctx, c.sel.Doctor.ID, *c.sel.TimeSlot, c.sel.Reason)
	if err != nil {
		return nil, err
	}
	c.sel.CurrentStep = StepSuccess
	return appt, nil
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
