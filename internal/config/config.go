package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends selectable through STORE_BACKEND.
const (
	BackendDynamo   = "dynamo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	StoreBackend string
	DatabaseURL  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	SNSRegion      string
	SMSEnabled     bool
	SMSCountryCode string // prefix for local numbers, e.g. "+63"

	SMTPHost       string
	SMTPPort       int
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPEncryption string // "starttls" | "ssl" | "none"

	RedisURL string

	OTPResendCooldown time.Duration
	OTPRetention      time.Duration
	OTPEchoCode       bool // demo builds only; ignored in production

	JWTPrivateKeyPath     string
	JWTPublicKeyPath      string
	RegistrationTicketTTL time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	AllowedOrigins []string // CORS allowed origins
	RateLimitRPS   float64
	RateLimitBurst int
	TrustedProxy   bool // honour X-Forwarded-For/X-Real-Ip from a fronting proxy
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users            string
	OTPVerifications string
	Listings         string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendDynamo)),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:            getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPVerifications: getEnv("DYNAMO_TABLE_OTP_VERIFICATIONS", "otp_verifications"),
			Listings:         getEnv("DYNAMO_TABLE_LISTINGS", "items"),
		},
		S3BucketName:   getEnv("S3_BUCKET_NAME", "rentall-uploads"),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		SMSEnabled:     getEnvBool("SMS_ENABLED", false),
		SMSCountryCode: getEnv("SMS_COUNTRY_CODE", "+63"),

		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@rentall.local"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPEncryption: getEnv("SMTP_ENCRYPTION", "none"),

		RedisURL: getEnv("REDIS_URL", ""),

		OTPResendCooldown: getEnvDuration("OTP_RESEND_COOLDOWN", 60*time.Second),
		OTPRetention:      getEnvDuration("OTP_RETENTION", 24*time.Hour),
		OTPEchoCode:       getEnvBool("OTP_ECHO_CODE", false),

		JWTPrivateKeyPath:     getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:      getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		RegistrationTicketTTL: getEnvDuration("REGISTRATION_TICKET_TTL", 30*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
		LogFile:   getEnv("LOG_FILE", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		TrustedProxy:   getEnvBool("TRUSTED_PROXY", false),
	}
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// EchoOTP reports whether issued codes may be returned in the HTTP response.
// Never true in production.
func (c *Config) EchoOTP() bool {
	return c.OTPEchoCode && !c.IsProduction()
}

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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "10m") or plain seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
