package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	AuthProviderURL string // Base URL of the external identity provider
	AuthServiceKey  string // Service key used to verify provider-signed session tokens

	SendGridAPIKey string
	EmailSender    string

	HandleRetryLimit int // Max regeneration attempts on certificate handle collision
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
		Port: getEnv("PORT", "3000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "nwd"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "nwd"),
		DBPort:     getEnv("DB_PORT", "5432"),

		AuthProviderURL: getEnv("AUTH_PROVIDER_URL", "https://auth.example.org"),
		AuthServiceKey:  getEnv("AUTH_SERVICE_KEY", "defaultSecret"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "noreply@example.org"),

		HandleRetryLimit: getEnvInt("HANDLE_RETRY_LIMIT", 5),
	}

	// Validate critical configuration
	if AppConfig.AuthServiceKey == "defaultSecret" {
		log.Println("Warning: Using default AUTH_SERVICE_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Email notifications are disabled.")
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
