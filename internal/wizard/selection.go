// Package wizard implements the multi-step booking flow: department →
// doctor → date/time → confirm → success. Each session's Selection has a
// single writer (the Controller); views only read published snapshots.
package wizard

import (
	"time"

	"github.com/harborview/clinic-portal/internal/directory"
)

// Step is one stage of the linear booking flow.
type Step string

const (
	StepDepartment Step = "DEPARTMENT"
	StepDoctor     Step = "DOCTOR"
	StepDateTime   Step = "DATETIME"
	StepConfirm    Step = "CONFIRM"
	StepSuccess    Step = "SUCCESS"
)

// steps in wizard order. SUCCESS is terminal.
var stepOrder = []Step{StepDepartment, StepDoctor, StepDateTime, StepConfirm, StepSuccess}

func stepIndex(s Step) int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Selection is the session-scoped record of in-progress booking choices.
type Selection struct {
	Department  *directory.Department `json:"department,omitempty"`
	Doctor      *directory.Doctor     `json:"doctor,omitempty"`
	Date        string                `json:"date,omitempty"` // YYYY-MM-DD
	TimeSlot    *time.Time            `json:"time_slot,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	CurrentStep Step                  `json:"current_step"`
}

// emptySelection is the initial state of every booking session.
func emptySelection() Selection {
	return Selection{CurrentStep: StepDepartment}
}

// requiredFieldSet reports whether the required field for the given step is
// populated, gating advancement out of that step.
func (s Selection) requiredFieldSet(step Step) bool {
	switch step {
	case StepDepartment:
		return s.Department != nil
	case StepDoctor:
		return s.Doctor != nil
	case StepDateTime:
		return s.Date != "" && s.TimeSlot != nil
	case StepConfirm:
		return s.complete()
	default:
		return false
	}
}

// complete reports whether every field the confirm call needs is present.
func (s Selection) complete() bool {
	return s.Department != nil && s.Doctor != nil && s.Date != "" && s.TimeSlot != nil
}
