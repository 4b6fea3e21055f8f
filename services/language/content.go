package language

import (
	"strings"
	"time"
)

// ClinicInfo is substituted into prompts and templates.
type ClinicInfo struct {
	Name         string
	Address      string
	Phone        string
	WorkingHours string
	WorkingDays  string
}

// Content renders localized prompts. Overrides are keyed by language, then
// template name, and win over the built-in texts.
type Content struct {
	catalog   *Catalog
	clinic    ClinicInfo
	overrides map[string]map[string]string
}

func NewContent(catalog *Catalog, clinic ClinicInfo, overrides map[string]map[string]string) *Content {
	normalized := make(map[string]map[string]string, len(overrides))
	for lang, tpls := range overrides {
		m := make(map[string]string, len(tpls))
		for name, text := range tpls {
			m[strings.ToLower(name)] = text
		}
		normalized[strings.ToLower(lang)] = m
	}
	return &Content{catalog: catalog, clinic: clinic, overrides: normalized}
}

func (c *Content) Catalog() *Catalog { return c.catalog }

func (c *Content) lookup(name, lang string) string {
	if text, ok := c.overrides[lang][name]; ok && text != "" {
		return text
	}
	texts := builtin[name]
	if text, ok := texts[lang]; ok {
		return text
	}
	if text, ok := c.overrides[c.catalog.Default()][name]; ok && text != "" {
		return text
	}
	if text, ok := texts[c.catalog.Default()]; ok {
		return text
	}
	return texts["en"]
}

// Render returns template name in lang with clinic details and vars filled in.
func (c *Content) Render(name, lang string, vars map[string]string) string {
	lang = c.catalog.Resolve(lang)
	pairs := []string{
		"{clinic_name}", c.clinic.Name,
		"{clinic_address}", c.clinic.Address,
		"{clinic_phone}", c.clinic.Phone,
		"{working_hours}", c.clinic.WorkingHours,
		"{working_days}", c.clinic.WorkingDays,
	}
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(c.lookup(name, lang))
}

// SystemPrompt is the model instruction for a conversation in lang.
func (c *Content) SystemPrompt(lang string, today time.Time) string {
	return c.Render(TplSystem, lang, map[string]string{"today": today.Format("2006-01-02")})
}

func (c *Content) Greeting(lang string) string { return c.Render(TplGreeting, lang, nil) }

func (c *Content) Closing(lang string) string { return c.Render(TplClosing, lang, nil) }

func (c *Content) ErrorMessage(lang string) string { return c.Render(TplError, lang, nil) }

func (c *Content) TimeoutMessage(lang string) string { return c.Render(TplTimeout, lang, nil) }

func (c *Content) Confirmation(lang, date, hhmm, appointmentID string) string {
	return c.Render(TplConfirmation, lang, map[string]string{"date": date, "time": hhmm, "id": appointmentID})
}

func (c *Content) Reminder(lang, date, hhmm string) string {
	return c.Render(TplReminder, lang, map[string]string{"date": date, "time": hhmm})
}

// FieldPrompt is the localized question for a missing field, or "" when
// the field has no template.
func (c *Content) FieldPrompt(field, lang string) string {
	name, ok := fieldTemplates[field]
	if !ok {
		return ""
	}
	return c.Render(name, lang, nil)
}
