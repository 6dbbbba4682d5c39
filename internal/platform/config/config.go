package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Server struct {
	Addr string

	// DatabaseURL enables the postgres stores; empty selects in-memory.
	DatabaseURL string

	// RedisURL enables the redis rate-limit store; empty selects in-memory.
	RedisURL string

	// KafkaBrokers enables the audit event publisher; empty disables it.
	KafkaBrokers []string
	AuditTopic   string

	// Admin login credentials. The hash is a hex SHA-256 of the password.
	AdminUsername     string
	AdminPasswordHash string
	AdminJWTKey       string
	AdminSessionTTL   time.Duration

	// SMTP delivery of generated documents; empty host disables email.
	SMTPHost string
	SMTPPort int
	SMTPFrom string
	SMTPUser string
	SMTPPass string

	// PDFDir is where generated documents are written.
	PDFDir string

	// RetentionDays controls how long generated PDFs are kept.
	// Payloads and audit records are never deleted by the sweeper.
	RetentionDays  int
	RetentionSweep time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("WILLGEN_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AuditTopic:      envOr("AUDIT_TOPIC", "willgen.audit"),
		AdminUsername:   envOr("ADMIN_USERNAME", "admin"),
		AdminJWTKey:     envOr("ADMIN_JWT_KEY", "dev-secret-key-change-in-production"),
		AdminSessionTTL: 30 * time.Minute,
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        envIntOr("SMTP_PORT", 587),
		SMTPFrom:        envOr("SMTP_FROM", "wills@example.com"),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		PDFDir:          envOr("PDF_DIR", "generated_wills"),
		RetentionDays:   envIntOr("RETENTION_DAYS", 2555), // 7 years
		RetentionSweep:  24 * time.Hour,
	}

	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitCommas(brokers)
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitCommas(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
