package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all runtime configuration, resolved once at process start
// and threaded through constructors. Nothing reads the environment after Load.
type Config struct {
	AppPort string
	AppEnv  string
	Stage   string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to a LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	// DynamoTable is the single application table (PK/SK composite key).
	DynamoTable string

	S3BucketName string

	// JWTSecret signs self-issued session tokens (OTP and Google logins).
	JWTSecret string

	CognitoRegion     string
	CognitoUserPoolID string
	// CognitoIssuer is the user pool issuer URL; its
	// /.well-known/jwks.json endpoint publishes the signing keys.
	CognitoIssuer string

	GoogleClientID string

	// OTPTestPrefix marks phone numbers that get the fixed test code and
	// skip SMS dispatch.
	OTPTestPrefix string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	stage := getEnv("STAGE", "dev")
	return &Config{
		AppPort: getEnv("APP_PORT", "4000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		Stage:   stage,

		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTable: getEnv("DYNAMODB_TABLE", fmt.Sprintf("qwiktax_%s", stage)),

		S3BucketName: getEnv("S3_BUCKET_NAME", "qwiktax-site-assets"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CognitoRegion:     getEnv("COGNITO_REGION", getEnv("AWS_REGION", "ap-south-1")),
		CognitoUserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
		CognitoIssuer:     getEnv("COGNITO_ISSUER", ""),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		OTPTestPrefix: getEnv("OTP_TEST_PREFIX", "+9199999"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@qwiktax.in"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", getEnv("AWS_REGION", "ap-south-1")),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
