package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	RateLimitEnabled  bool   `mapstructure:"RATE_LIMIT_ENABLED"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminAPIKey       string `mapstructure:"ADMIN_API_KEY"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB       int    `mapstructure:"REDIS_SESSION_DB"`
	RedisLockDB          int    `mapstructure:"REDIS_LOCK_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Gemini / Google.
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string `mapstructure:"GEMINI_MODEL"`
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// LiveKit.
	LiveKitURL        string `mapstructure:"LIVEKIT_URL"`
	LiveKitAPIKey     string `mapstructure:"LIVEKIT_API_KEY"`
	LiveKitAPISecret  string `mapstructure:"LIVEKIT_API_SECRET"`
	LiveKitRoomPrefix string `mapstructure:"LIVEKIT_ROOM_PREFIX"`

	// Twilio.
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`

	// Clinic information.
	ClinicName         string `mapstructure:"CLINIC_NAME"`
	ClinicAddress      string `mapstructure:"CLINIC_ADDRESS"`
	ClinicPhone        string `mapstructure:"CLINIC_PHONE"`
	ClinicWorkingHours string `mapstructure:"CLINIC_WORKING_HOURS"`
	ClinicWorkingDays  string `mapstructure:"CLINIC_WORKING_DAYS"`
	ClinicTimezone     string `mapstructure:"CLINIC_TIMEZONE"`
	ClinicOpenHour     int    `mapstructure:"CLINIC_OPEN_HOUR"`
	ClinicCloseHour    int    `mapstructure:"CLINIC_CLOSE_HOUR"`

	// Appointments.
	SlotDurationMinutes   int `mapstructure:"APPOINTMENT_SLOT_DURATION"`
	BufferMinutes         int `mapstructure:"APPOINTMENT_BUFFER_MINUTES"`
	ReminderHours         int `mapstructure:"APPOINTMENT_REMINDER_HOURS"`
	BookingLockTTLSeconds int `mapstructure:"BOOKING_LOCK_TTL_SECONDS"`

	// Languages and prompts.
	DefaultLanguage    string                       `mapstructure:"DEFAULT_LANGUAGE"`
	KeralaLanguage     string                       `mapstructure:"KERALA_LANGUAGE"`
	SupportedLanguages string                       `mapstructure:"SUPPORTED_LANGUAGES"`
	AutoDetectLanguage bool                         `mapstructure:"AUTO_DETECT_LANGUAGE"`
	FieldPriority      string                       `mapstructure:"FIELD_PRIORITY"`
	Prompts            map[string]map[string]string `mapstructure:"PROMPTS"`

	// Assistant runtime.
	TurnTimeoutSeconds        int `mapstructure:"AI_TURN_TIMEOUT_SECONDS"`
	MaxHistoryTurns           int `mapstructure:"AI_MAX_HISTORY_TURNS"`
	SessionIdleTimeoutSeconds int `mapstructure:"SESSION_IDLE_TIMEOUT_SECONDS"`
	RoomEmptyTimeoutSeconds   int `mapstructure:"ROOM_EMPTY_TIMEOUT_SECONDS"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env, when present, seeds the environment before viper reads it.
	_ = godotenv.Load()

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ADMIN_API_KEY", "")

	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "dental_ai_db")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 2)

	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")

	viper.SetDefault("LIVEKIT_URL", "")
	viper.SetDefault("LIVEKIT_API_KEY", "")
	viper.SetDefault("LIVEKIT_API_SECRET", "")
	viper.SetDefault("LIVEKIT_ROOM_PREFIX", "dental_clinic_")

	viper.SetDefault("TWILIO_ACCOUNT_SID", "")
	viper.SetDefault("TWILIO_AUTH_TOKEN", "")
	viper.SetDefault("TWILIO_FROM_NUMBER", "")

	viper.SetDefault("CLINIC_NAME", "Smile Dental Clinic")
	viper.SetDefault("CLINIC_ADDRESS", "123 Main Street, Perintalmanna, Kerala 679322")
	viper.SetDefault("CLINIC_PHONE", "+919876543210")
	viper.SetDefault("CLINIC_WORKING_HOURS", "9:00 AM - 8:00 PM")
	viper.SetDefault("CLINIC_WORKING_DAYS", "Monday to Saturday")
	viper.SetDefault("CLINIC_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("CLINIC_OPEN_HOUR", 9)
	viper.SetDefault("CLINIC_CLOSE_HOUR", 20)

	viper.SetDefault("APPOINTMENT_SLOT_DURATION", 30)
	viper.SetDefault("APPOINTMENT_BUFFER_MINUTES", 15)
	viper.SetDefault("APPOINTMENT_REMINDER_HOURS", 24)
	viper.SetDefault("BOOKING_LOCK_TTL_SECONDS", 10)

	viper.SetDefault("DEFAULT_LANGUAGE", "en")
	viper.SetDefault("KERALA_LANGUAGE", "ml")
	viper.SetDefault("SUPPORTED_LANGUAGES", "en,ml,hi,ta")
	viper.SetDefault("AUTO_DETECT_LANGUAGE", true)
	viper.SetDefault("FIELD_PRIORITY", "patient_name,phone,appointment_date,appointment_time")

	viper.SetDefault("AI_TURN_TIMEOUT_SECONDS", 20)
	viper.SetDefault("AI_MAX_HISTORY_TURNS", 20)
	viper.SetDefault("SESSION_IDLE_TIMEOUT_SECONDS", 300)
	viper.SetDefault("ROOM_EMPTY_TIMEOUT_SECONDS", 300)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SplitList turns a comma separated setting into trimmed, non-empty values.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
