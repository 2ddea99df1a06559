package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	APIBaseURL  string
	APITimeout  time.Duration
	CORSOrigins []string

	// StoreBackend is one of memory, postgres or redis.
	StoreBackend  string
	DatabaseURL   string
	RedisURL      string
	SessionTTL    time.Duration
	SessionIdle   time.Duration
	SessionSecret string
	CookieSecure  bool

	SlotsRefetch time.Duration

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string

	ServiceName string
	LogLevel    string
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return Config{
		Port:        getEnv("PORT", "8080"),
		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api/v1"), "/"),
		APITimeout:  getDuration("API_TIMEOUT", 30*time.Second),
		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", "memory")),
		DatabaseURL:   os.Getenv("DB_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SessionTTL:    getDuration("SESSION_TTL", 7*24*time.Hour),
		SessionIdle:   getDuration("SESSION_IDLE", 30*time.Minute),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  getBool("COOKIE_SECURE", false),

		SlotsRefetch: getDuration("SLOTS_REFETCH_INTERVAL", time.Minute),

		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:    os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioWhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),

		ServiceName: getEnv("OTEL_SERVICE_NAME", "salonpro-gateway"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
