package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	// Certificate subsystem
	CertPrefix          string // verification code prefix, e.g. CERT
	VerificationBaseURL string // public URL the QR code points at
	CertStorageDir      string // directory rendered artifacts are written to
	CertDefaultTemplate string // STANDARD, PREMIUM or CUSTOM
	CertBulkWorkers     int    // concurrent renders in batch operations
	CertRetrySchedule   string // cron spec for the failed-certificate sweep

	EmailSender string
	Password    string // SMTP Password

	WebhookURL   string // platform webhook notified on issue/revoke
	WebhookToken string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	// Initialize AppConfig with values from environment variables
	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		CertPrefix:          getEnv("CERT_PREFIX", "CERT"),
		VerificationBaseURL: getEnv("CERT_VERIFY_BASE_URL", "http://localhost:3000/api/verify"),
		CertStorageDir:      getEnv("CERT_STORAGE_DIR", "./storage/certificates"),
		CertDefaultTemplate: getEnv("CERT_DEFAULT_TEMPLATE", "STANDARD"),
		CertBulkWorkers:     getEnvInt("CERT_BULK_WORKERS", 4),
		CertRetrySchedule:   getEnv("CERT_RETRY_SCHEDULE", "0 3 * * *"),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),

		WebhookURL:   getEnv("PLATFORM_WEBHOOK_URL", ""),
		WebhookToken: getEnv("PLATFORM_WEBHOOK_TOKEN", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.VerificationBaseURL == "http://localhost:3000/api/verify" {
		log.Println("Warning: Using default CERT_VERIFY_BASE_URL. Public QR codes will point at localhost.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
