package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
	Queue   QueueConfig
	Auth    AuthConfig
	Mail    MailConfig
	Tracing TracingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MetricsPort     int
	RateLimitRPS    int
	RateLimitBurst  int
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	UploadExpiry    time.Duration
	DownloadExpiry  time.Duration
}

// QueueConfig holds message queue configuration
type QueueConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Vhost    string
}

// AuthConfig holds token and account configuration
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	VerificationTTL time.Duration
	AdminEmail      string
}

// MailConfig holds outbound mail configuration
type MailConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	SenderName   string
	FrontendBase string
	VerifyPath   string
	ResetPath    string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// TracingConfig holds Jaeger tracing configuration
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	JaegerEndpoint string
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.readTimeout", "30s")
	viper.SetDefault("server.writeTimeout", "30s")
	viper.SetDefault("server.shutdownTimeout", "10s")
	viper.SetDefault("server.metricsPort", 9091)
	viper.SetDefault("server.rateLimitRPS", 20)
	viper.SetDefault("server.rateLimitBurst", 40)

	// Mongo defaults
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "podpirate")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.cacheTTL", "5m")

	// Storage defaults
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.accessKeyID", "minioadmin")
	viper.SetDefault("storage.secretAccessKey", "minioadmin")
	viper.SetDefault("storage.bucketName", "podpirate-media")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.useSSL", false)
	viper.SetDefault("storage.uploadExpiry", "30m")
	viper.SetDefault("storage.downloadExpiry", "24h")

	// Queue defaults
	viper.SetDefault("queue.host", "localhost")
	viper.SetDefault("queue.port", 5672)
	viper.SetDefault("queue.user", "guest")
	viper.SetDefault("queue.password", "guest")
	viper.SetDefault("queue.vhost", "/")

	// Auth defaults. Access and refresh lifetimes are long-lived, the
	// verification token is deliberately short.
	viper.SetDefault("auth.jwtSecret", "")
	viper.SetDefault("auth.accessTokenTTL", "24h")
	viper.SetDefault("auth.refreshTokenTTL", "168h")
	viper.SetDefault("auth.verificationTTL", "10m")
	viper.SetDefault("auth.adminEmail", "")

	// Mail defaults
	viper.SetDefault("mail.host", "localhost")
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("mail.user", "")
	viper.SetDefault("mail.password", "")
	viper.SetDefault("mail.from", "no-reply@podpirate.dev")
	viper.SetDefault("mail.senderName", "Pod Pirate")
	viper.SetDefault("mail.frontendBase", "http://localhost:3000")
	viper.SetDefault("mail.verifyPath", "/auth/verify-email?token=")
	viper.SetDefault("mail.resetPath", "/auth/reset-password?token=")
	viper.SetDefault("mail.maxAttempts", 4)
	viper.SetDefault("mail.retryBackoff", "3s")

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.serviceName", "podpirate-api")
	viper.SetDefault("tracing.jaegerEndpoint", "http://localhost:14268/api/traces")
}
