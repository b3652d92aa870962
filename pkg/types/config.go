package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"countyconnect"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito issues and manages sessions; we only verify its tokens
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Uploads
	S3BucketName    string `envconfig:"S3_BUCKET_NAME"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
	UploadMaxBytes  int64  `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"` // 10 MiB

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// robfig/cron spec for refreshing the moderation queue gauge
	ModerationStatsSchedule string `envconfig:"MODERATION_STATS_SCHEDULE" default:"@every 5m"`
}
