package language

import (
	"strings"

	"golang.org/x/text/language"
)

var displayNames = map[string]string{
	"en": "English",
	"ml": "Malayalam",
	"hi": "Hindi",
	"ta": "Tamil",
}

// Kerala STD codes used by the caller heuristic.
var keralaCodes = []string{
	"471", "472", "473", "474", "475", "476", "477", "478", "479", "480",
	"481", "482", "483", "484", "485", "486", "487", "488", "489", "490", "491",
}

// Catalog knows which languages the assistant speaks.
type Catalog struct {
	supported   []string
	defaultLang string
	keralaLang  string
	autoDetect  bool
	matcher     language.Matcher
}

func NewCatalog(supported []string, defaultLang, keralaLang string, autoDetect bool) *Catalog {
	if defaultLang == "" {
		defaultLang = "en"
	}
	codes := make([]string, 0, len(supported)+1)
	seen := map[string]bool{}
	// The default language goes first so the matcher falls back to it.
	for _, code := range append([]string{defaultLang}, supported...) {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, language.Make(code))
	}
	return &Catalog{
		supported:   codes,
		defaultLang: strings.ToLower(defaultLang),
		keralaLang:  keralaLang,
		autoDetect:  autoDetect,
		matcher:     language.NewMatcher(tags),
	}
}

func (c *Catalog) Default() string { return c.defaultLang }

func (c *Catalog) Supported() []string {
	out := make([]string, len(c.supported))
	copy(out, c.supported)
	return out
}

func (c *Catalog) IsSupported(code string) bool {
	code = strings.ToLower(code)
	for _, s := range c.supported {
		if s == code {
			return true
		}
	}
	return false
}

// Resolve maps a requested language ("ml", "ml-IN", "en_US") to a supported
// code, falling back to the default.
func (c *Catalog) Resolve(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return c.defaultLang
	}
	if c.IsSupported(code) {
		return strings.ToLower(code)
	}
	tag, err := language.Parse(code)
	if err != nil {
		return c.defaultLang
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.defaultLang
	}
	return c.supported[idx]
}

// Name returns the English display name of a language code.
func (c *Catalog) Name(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return code
}

// IsKeralaNumber reports whether an Indian number carries a Kerala STD code.
func IsKeralaNumber(phone string) bool {
	if !strings.HasPrefix(phone, "+91") {
		return false
	}
	for _, code := range keralaCodes {
		if strings.Contains(phone, code) {
			return true
		}
	}
	return false
}

// InitialLanguage picks the starting language for a caller with no
// explicit preference.
func (c *Catalog) InitialLanguage(phone string) string {
	if c.autoDetect && c.keralaLang != "" && IsKeralaNumber(phone) {
		return c.Resolve(c.keralaLang)
	}
	return c.defaultLang
}

// AutoDetect reports whether utterance-based switching is enabled.
func (c *Catalog) AutoDetect() bool { return c.autoDetect }
