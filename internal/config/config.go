package config

import (
	"os"
	"strconv"
	"time"

	"estatedesk-service/internal/pkg/jwt"
	"estatedesk-service/internal/pkg/sms"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// JWT
	JWT jwt.Config

	// OTP
	OTPSecret       string
	OTPExpiry       time.Duration
	OTPMaxAttempts  int
	OTPMaxSends     int64
	OTPSendWindow   time.Duration
	FallbackBaseURL string

	// SMS
	Twilio sms.TwilioConfig

	// Daily assignment job
	AssignInterval time.Duration
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWT: jwt.Config{
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   getEnv("JWT_ISSUER", "estatedesk-identity"),
			Audience: getEnv("JWT_AUDIENCE", "estatedesk-staff"),
		},

		OTPSecret:       getEnv("OTP_SECRET", ""),
		OTPExpiry:       getEnvDuration("OTP_EXPIRY", 5*time.Minute),
		OTPMaxAttempts:  getEnvInt("OTP_MAX_ATTEMPTS", 3),
		OTPMaxSends:     int64(getEnvInt("OTP_MAX_SENDS", 5)),
		OTPSendWindow:   getEnvDuration("OTP_SEND_WINDOW", time.Hour),
		FallbackBaseURL: getEnv("OTP_FALLBACK_BASE_URL", "https://verify.estatedesk.app"),

		Twilio: sms.TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_FROM", ""),
		},

		AssignInterval: getEnvDuration("ASSIGN_INTERVAL", 24*time.Hour),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
