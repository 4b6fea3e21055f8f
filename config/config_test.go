package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	LoadConfig()

	assert.Equal(t, 30, AppConfig.SlotDurationMinutes)
	assert.Equal(t, 15, AppConfig.BufferMinutes)
	assert.Equal(t, 9, AppConfig.ClinicOpenHour)
	assert.Equal(t, 20, AppConfig.ClinicCloseHour)
	assert.Equal(t, "en", AppConfig.DefaultLanguage)
	assert.False(t, IsProduction())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("APPOINTMENT_BUFFER_MINUTES", "20")
	t.Setenv("ENV", "production")
	LoadConfig()

	assert.Equal(t, 20, AppConfig.BufferMinutes)
	assert.True(t, IsProduction())
}

func TestSplitList(t *testing.T) {
	got := SplitList(" en, ml,,hi ,ta ")
	require.Len(t, got, 4)
	assert.Equal(t, []string{"en", "ml", "hi", "ta"}, got)
	assert.Empty(t, SplitList(""))
}
