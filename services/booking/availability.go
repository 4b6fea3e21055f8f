package booking

import (
	"context"
	"fmt"
	"time"

	"aira/config"
	appointmentRepo "aira/database/repository/appointment"
	"aira/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ClinicHours is the scheduling configuration the engine works with.
type ClinicHours struct {
	OpenHour      int
	CloseHour     int
	SlotMinutes   int
	BufferMinutes int
	Location      *time.Location
}

// HoursFromConfig builds ClinicHours from the loaded application config.
func HoursFromConfig(cfg config.Config) (ClinicHours, error) {
	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		return ClinicHours{}, fmt.Errorf("failed to load clinic timezone %q: %w", cfg.ClinicTimezone, err)
	}
	h := ClinicHours{
		OpenHour:      cfg.ClinicOpenHour,
		CloseHour:     cfg.ClinicCloseHour,
		SlotMinutes:   cfg.SlotDurationMinutes,
		BufferMinutes: cfg.BufferMinutes,
		Location:      loc,
	}
	if h.SlotMinutes <= 0 {
		h.SlotMinutes = 30
	}
	if h.BufferMinutes < 0 {
		h.BufferMinutes = 0
	}
	if h.CloseHour <= h.OpenHour {
		return ClinicHours{}, fmt.Errorf("clinic close hour %d must be after open hour %d", h.CloseHour, h.OpenHour)
	}
	return h, nil
}

// AvailabilityEngine answers slot questions against the appointment store.
// A time is available when no active appointment starts inside
// [t - buffer, t + slot + buffer).
type AvailabilityEngine struct {
	repo  appointmentRepo.AppointmentRepository
	hours ClinicHours
}

func NewAvailabilityEngine(repo appointmentRepo.AppointmentRepository, hours ClinicHours) *AvailabilityEngine {
	if hours.Location == nil {
		hours.Location = time.UTC
	}
	return &AvailabilityEngine{repo: repo, hours: hours}
}

func (e *AvailabilityEngine) Hours() ClinicHours {
	return e.hours
}

// Instant resolves a clinic-local date and HH:MM time.
func (e *AvailabilityEngine) Instant(date, hhmm string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, e.hours.Location)
	if err != nil {
		return time.Time{}, newValidationError("appointmentDate", "expected YYYY-MM-DD")
	}
	t, err := time.Parse(timeLayout, hhmm)
	if err != nil {
		return time.Time{}, newValidationError("appointmentTime", "expected HH:MM")
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, e.hours.Location), nil
}

func (e *AvailabilityEngine) window(at time.Time) (time.Time, time.Time) {
	buffer := time.Duration(e.hours.BufferMinutes) * time.Minute
	slot := time.Duration(e.hours.SlotMinutes) * time.Minute
	return at.Add(-buffer), at.Add(slot + buffer)
}

// CheckAvailability reports whether date/time can take a new appointment.
func (e *AvailabilityEngine) CheckAvailability(ctx context.Context, date, hhmm string) (bool, error) {
	at, err := e.Instant(date, hhmm)
	if err != nil {
		return false, err
	}
	return e.availableAt(ctx, at, "")
}

// availableAt ignores the appointment with excludeID, so a reschedule does
// not conflict with itself.
func (e *AvailabilityEngine) availableAt(ctx context.Context, at time.Time, excludeID string) (bool, error) {
	start, end := e.window(at)
	appts, err := e.repo.FindActiveInWindow(ctx, start.UTC(), end.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	for _, a := range appts {
		if a.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}

// GetAvailableSlots lists the free HH:MM start times of a day in
// chronological order. slotDuration is the grid step in minutes; zero
// means the configured slot length.
func (e *AvailabilityEngine) GetAvailableSlots(ctx context.Context, date string, slotDuration int) ([]string, error) {
	if slotDuration < 0 {
		return nil, newValidationError("slotDuration", "must not be negative")
	}
	if slotDuration == 0 {
		slotDuration = e.hours.SlotMinutes
	}
	if span := (e.hours.CloseHour - e.hours.OpenHour) * 60; slotDuration > span {
		return nil, newValidationError("slotDuration", fmt.Sprintf("must not exceed %d minutes", span))
	}
	day, err := time.ParseInLocation(dateLayout, date, e.hours.Location)
	if err != nil {
		return nil, newValidationError("date", "expected YYYY-MM-DD")
	}

	var candidates []time.Time
	for m := e.hours.OpenHour * 60; m < e.hours.CloseHour*60; m += slotDuration {
		candidates = append(candidates, time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, e.hours.Location))
	}
	slots := make([]string, 0, len(candidates))
	if len(candidates) == 0 {
		return slots, nil
	}

	// One query covering every candidate window.
	from, _ := e.window(candidates[0])
	_, to := e.window(candidates[len(candidates)-1])
	booked, err := e.repo.FindActiveInWindow(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}

	for _, c := range candidates {
		if !conflicts(booked, e, c) {
			slots = append(slots, c.Format(timeLayout))
		}
	}
	return slots, nil
}

func conflicts(booked []models.Appointment, e *AvailabilityEngine, at time.Time) bool {
	start, end := e.window(at)
	for _, a := range booked {
		if !a.ScheduledAt.Before(start) && a.ScheduledAt.Before(end) {
			return true
		}
	}
	return false
}
