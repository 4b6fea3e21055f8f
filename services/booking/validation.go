package booking

import (
	"regexp"
	"strings"
	"time"

	"aira/models"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern  = regexp.MustCompile(`^\+?[1-9]\d{9,14}$`)
	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	validate      = validator.New()
)

// NormalizePhone removes the separators callers tend to speak or type.
func NormalizePhone(phone string) string {
	return phoneStripper.Replace(strings.TrimSpace(phone))
}

// ValidPhone reports whether phone is an international or 10+ digit number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// normalizeTime accepts H:MM or HH:MM and returns HH:MM.
func normalizeTime(raw string) (string, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", newValidationError("appointmentTime", "expected HH:MM")
	}
	return t.Format(timeLayout), nil
}

func (s *DefaultAppointmentService) validateInput(in *models.AppointmentInput) (time.Time, error) {
	in.PatientName = strings.TrimSpace(in.PatientName)
	if len([]rune(in.PatientName)) < 2 {
		return time.Time{}, newValidationError("patientName", "must be at least 2 characters")
	}
	in.PatientPhone = NormalizePhone(in.PatientPhone)
	if !phonePattern.MatchString(in.PatientPhone) {
		return time.Time{}, newValidationError("patientPhone", "must be 10 to 15 digits with optional leading +")
	}
	if in.PatientEmail != "" {
		if err := validate.Var(in.PatientEmail, "email"); err != nil {
			return time.Time{}, newValidationError("patientEmail", "must be a valid email address")
		}
	}
	hhmm, err := normalizeTime(in.AppointmentTime)
	if err != nil {
		return time.Time{}, err
	}
	in.AppointmentTime = hhmm

	return s.validateSlot(in.AppointmentDate, in.AppointmentTime)
}

// validateSlot checks that date/time is in the future and inside opening hours.
func (s *DefaultAppointmentService) validateSlot(date, hhmm string) (time.Time, error) {
	at, err := s.Engine.Instant(date, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	if !at.After(s.now()) {
		return time.Time{}, newValidationError("appointmentDate", "must be in the future")
	}
	h := s.Engine.Hours()
	minute := at.Hour()*60 + at.Minute()
	if minute < h.OpenHour*60 || minute >= h.CloseHour*60 {
		return time.Time{}, newValidationError("appointmentTime", "outside clinic hours")
	}
	return at, nil
}
