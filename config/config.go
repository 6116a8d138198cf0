package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string

	PushProvider        string
	ExpoPushURL         string
	FirebaseCredentials string
	PushChunkSize       int
	PushConcurrency     int
	PushTimeout         time.Duration
	RetentionWindow     time.Duration

	SendgridAPIKey string
	OpsEmail       string
}

// New sets up all config related services
func New() *Config {
	// load a .env file if one exists, env vars still win
	_ = godotenv.Load()

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         os.Getenv("PORT"),

		PushProvider:        getEnv("PUSH_PROVIDER", "expo"),
		ExpoPushURL:         getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		PushChunkSize:       getEnvInt("PUSH_CHUNK_SIZE", 100),
		PushConcurrency:     getEnvInt("PUSH_CONCURRENCY", 4),
		PushTimeout:         getEnvDuration("PUSH_TIMEOUT", 15*time.Second),
		RetentionWindow:     time.Duration(getEnvInt("TOKEN_RETENTION_DAYS", 30)) * 24 * time.Hour,

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		OpsEmail:       os.Getenv("OPS_EMAIL"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
		zap.S().Warnw("invalid integer env value, using default",
			"key", key,
			"default", defaultValue,
		)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
		zap.S().Warnw("invalid duration env value, using default",
			"key", key,
			"default", defaultValue,
		)
	}
	return defaultValue
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
}
