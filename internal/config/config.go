package config

import (
	"os"
	"time"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins string

	// Storage: sqlite (one database file per user), postgres (one database
	// per user on a shared server) or memory (test double).
	StorageDriver string
	StoragePath   string

	// Postgres backend
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// User roster (optional JSON file; built-in roster otherwise)
	UsersConfigPath string

	// Optional bearer-token identity source
	JWTSecret string

	// Google Sheets export
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsTimeout         time.Duration

	// Logging
	AuditLogPath string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		StorageDriver: getEnv("STORAGE_DRIVER", "sqlite"),
		StoragePath:   getEnv("STORAGE_PATH", "data/crm.db"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		UsersConfigPath: getEnv("USERS_CONFIG_PATH", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsTimeout:         parseDuration(getEnv("SHEETS_TIMEOUT", "15s")),

		AuditLogPath: getEnv("AUDIT_LOG_PATH", "data/audit.log"),
	}
}

// PostgresDSN builds the DSN for one user's database on the shared server.
func (c *Config) PostgresDSN(dbname string) string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + dbname +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Second
	}
	return d
}
