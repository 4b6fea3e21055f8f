package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"aira/models"
)

var entityFields = []string{
	models.FieldPatientName,
	models.FieldPhone,
	models.FieldEmail,
	models.FieldAppointmentDate,
	models.FieldAppointmentTime,
	models.FieldReason,
}

var knownIntents = []string{
	models.IntentBook,
	models.IntentCancel,
	models.IntentReschedule,
	models.IntentInquiry,
	models.IntentEmergency,
	models.IntentGreeting,
	models.IntentOther,
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM", "3PM", "3:04 pm", "3:04pm", "3 pm", "3pm"}

// parseEntities reads the JSON object out of a model reply. Null, empty
// and unparsable date/time values are dropped.
func parseEntities(raw string) (models.Entities, error) {
	body := raw
	if i := strings.Index(body, "{"); i >= 0 {
		body = body[i:]
	} else {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrMalformedOutput, truncate(raw, 80))
	}
	if j := strings.LastIndex(body, "}"); j >= 0 {
		body = body[:j+1]
	}

	var values map[string]interface{}
	if err := json.Unmarshal([]byte(body), &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	entities := models.Entities{}
	for _, field := range entityFields {
		v, ok := stringValue(values[field])
		if !ok {
			continue
		}
		switch field {
		case models.FieldAppointmentTime:
			if v, ok = normalizeClock(v); !ok {
				continue
			}
		case models.FieldAppointmentDate:
			if _, err := time.Parse("2006-01-02", v); err != nil {
				continue
			}
		}
		entities[field] = v
	}
	return entities, nil
}

func stringValue(v interface{}) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "", false
	}
	switch strings.ToLower(s) {
	case "", "null", "none", "n/a", "unknown":
		return "", false
	}
	return s, true
}

func normalizeClock(v string) (string, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}

// normalizeIntent maps a free-form model answer onto a known intent label.
func normalizeIntent(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, "\"'`.* \n")
	for _, intent := range knownIntents {
		if s == intent {
			return intent
		}
	}
	// A leading label is the answer; otherwise the last label mentioned wins.
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	if len(words) > 0 {
		for _, intent := range knownIntents {
			if words[0] == intent {
				return intent
			}
		}
	}
	best, at := models.IntentOther, -1
	for _, intent := range knownIntents {
		if i := strings.LastIndex(s, intent); i > at {
			best, at = intent, i
		}
	}
	return best
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
