package language

import (
	"strings"
	"testing"
	"time"

	"aira/models"

	"github.com/stretchr/testify/assert"
)

func testCatalog() *Catalog {
	return NewCatalog([]string{"en", "ml", "hi", "ta"}, "en", "ml", true)
}

func TestCatalogResolve(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, "ml", c.Resolve("ml"))
	assert.Equal(t, "ml", c.Resolve("ML"))
	assert.Equal(t, "ml", c.Resolve("ml-IN"))
	assert.Equal(t, "en", c.Resolve("en_US"))
	assert.Equal(t, "en", c.Resolve(""))
	assert.Equal(t, "en", c.Resolve("fr"))
	assert.Equal(t, "en", c.Resolve("!!"))
	assert.Equal(t, []string{"en", "ml", "hi", "ta"}, c.Supported())
}

func TestCatalogDefaultAlwaysSupported(t *testing.T) {
	c := NewCatalog([]string{"ml"}, "hi", "ml", false)
	assert.True(t, c.IsSupported("hi"))
	assert.Equal(t, "hi", c.Resolve("de"))
}

func TestInitialLanguage(t *testing.T) {
	c := testCatalog()
	assert.Equal(t, "ml", c.InitialLanguage("+914712345678"))
	assert.Equal(t, "en", c.InitialLanguage("+912212345678"))
	assert.Equal(t, "en", c.InitialLanguage("+14715550100"))

	off := NewCatalog([]string{"en", "ml"}, "en", "ml", false)
	assert.Equal(t, "en", off.InitialLanguage("+914712345678"))
}

func TestDetectScript(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"എനിക്ക് ഒരു അപ്പോയിന്റ്മെന്റ് വേണം", "ml"},
		{"मुझे अपॉइंटमेंट चाहिए", "hi"},
		{"எனக்கு ஒரு சந்திப்பு வேண்டும்", "ta"},
		{"I need an appointment tomorrow", "en"},
		{"1234 5678", ""},
		{"", ""},
	}
	for _, tc := range cases {
		got, _ := DetectScript(tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}

	// Mixed utterance with enough Malayalam letters still counts as Malayalam.
	got, conf := DetectScript("appointment നാളെ വേണം")
	assert.Equal(t, "ml", got)
	assert.GreaterOrEqual(t, conf, ScriptThreshold)
}

func TestContentRender(t *testing.T) {
	content := NewContent(testCatalog(), ClinicInfo{Name: "Smile Dental", Address: "MG Road"}, map[string]map[string]string{
		"EN": {"Greeting": "Hi from {clinic_name}!"},
	})

	assert.Equal(t, "Hi from Smile Dental!", content.Greeting("en"))
	assert.Contains(t, content.Greeting("ml"), "Smile Dental")
	assert.Equal(t, content.Greeting("en"), content.Greeting("fr"))

	prompt := content.SystemPrompt("en", time.Date(2030, 1, 10, 8, 0, 0, 0, time.UTC))
	assert.Contains(t, prompt, "Current date: 2030-01-10")
	assert.Contains(t, prompt, "Address: MG Road")
	assert.False(t, strings.Contains(prompt, "{"))

	msg := content.Confirmation("en", "2030-01-10", "10:00", "abc")
	assert.Equal(t, "I've scheduled your appointment for 2030-01-10 at 10:00. Your appointment ID is abc. Is there anything else I can help you with?", msg)
}

func TestFieldPrompt(t *testing.T) {
	content := NewContent(testCatalog(), ClinicInfo{Name: "Smile Dental"}, nil)

	assert.Equal(t, "May I have your name, please?", content.FieldPrompt(models.FieldPatientName, "en"))
	assert.Equal(t, "नमस्ते! Smile Dental में आपका स्वागत है। मैं आपकी कैसे मदद कर सकता हूं?", content.Greeting("hi"))
	// Languages without a translation fall back to the default text.
	assert.Equal(t, "What is the reason for your visit?", content.FieldPrompt(models.FieldReason, "ta"))
	assert.Empty(t, content.FieldPrompt("shoe_size", "en"))
	assert.NotEmpty(t, content.ErrorMessage("ml"))
	assert.NotEmpty(t, content.TimeoutMessage("ta"))
}
