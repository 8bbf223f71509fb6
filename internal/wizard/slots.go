package wizard

import (
	"time"

	"github.com/harborview/clinic-portal/internal/appointments"
)

// SlotConfig describes the clinic's bookable grid.
type SlotConfig struct {
	OpenHour     int
	CloseHour    int
	SlotDuration time.Duration
}

// DefaultSlotConfig is a 9-to-5 grid of 30 minute visits.
func DefaultSlotConfig() SlotConfig {
	return SlotConfig{OpenHour: 9, CloseHour: 17, SlotDuration: 30 * time.Minute}
}

// FreeSlots returns the open slot start times for a day, given the doctor's
// existing non-cancelled appointments. day is interpreted in UTC.
func (c SlotConfig) FreeSlots(day time.Time, busy []appointments.Appointment) []time.Time {
	if c.SlotDuration <= 0 {
		c.SlotDuration = 30 * time.Minute
	}
	open := time.Date(day.Year(), day.Month(), day.Day(), c.OpenHour, 0, 0, 0, time.UTC)
	close := time.Date(day.Year(), day.Month(), day.Day(), c.CloseHour, 0, 0, 0, time.UTC)

	var free []time.Time
	for slot := open; slot.Before(close); slot = slot.Add(c.SlotDuration) {
		if c.slotBlocked(slot, busy) {
			continue
		}
		free = append(free, slot)
	}
	return free
}

// slotBlocked reports whether any non-cancelled appointment overlaps the
// interval [slot, slot+SlotDuration). An appointment placed off the grid
// still blocks every slot it crosses into.
func (c SlotConfig) slotBlocked(slot time.Time, busy []appointments.Appointment) bool {
	slotEnd := slot.Add(c.SlotDuration)
	for _, appt := range busy {
		if appt.Status == appointments.StatusCancelled {
			continue
		}
		start := appt.StartTime.UTC()
		end := start.Add(c.SlotDuration)
		if start.Before(slotEnd) && slot.Before(end) {
			return true
		}
	}
	return false
}

// Contains reports whether slot is one of the free slots for the day.
func (c SlotConfig) Contains(day time.Time, busy []appointments.Appointment, slot time.Time) bool {
	slot = slot.UTC()
	for _, s := range c.FreeSlots(day, busy) {
		if s.Equal(slot) {
			return true
		}
	}
	return false
}
