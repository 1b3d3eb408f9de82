package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App          AppSettings        `yaml:"app"`
	Database     DatabaseSettings   `yaml:"database"`
	Server       ServerSettings     `yaml:"server"`
	JWT          JWTSettings        `yaml:"jwt"`
	Logging      LoggingSettings    `yaml:"logging"`
	CORS         CORSSettings       `yaml:"cors"`
	PasswordHash HashSettings       `yaml:"password_hash"`
	Moderation   ModerationSettings `yaml:"moderation"`
	Events       EventsSettings     `yaml:"events"`
	Redis        RedisSettings      `yaml:"redis"`
	Notifier     NotifierSettings   `yaml:"notifier"`
	Google       GoogleSettings     `yaml:"google"`
	Lockout      LockoutSettings    `yaml:"lockout"`
	Seed         SeedSettings       `yaml:"seed"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings contains database connection settings
type DatabaseSettings struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSL      bool   `yaml:"ssl" env:"DB_SSL"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	// TrustProxy takes the client address from X-Real-IP / X-Forwarded-For.
	// Enable it only when every request arrives through a proxy that sets them.
	TrustProxy bool `yaml:"trust_proxy" env:"SERVER_TRUST_PROXY"`
}

// JWTSettings contains JWT authentication settings
type JWTSettings struct {
	Secret        string        `yaml:"secret" env:"JWT_SECRET"`
	Expiry        time.Duration `yaml:"expiry" env:"JWT_EXPIRY"`
	RefreshExpiry time.Duration `yaml:"refresh_expiry" env:"JWT_REFRESH_EXPIRY"`
	Issuer        string        `yaml:"issuer" env:"JWT_ISSUER"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// HashSettings contains password hashing settings
type HashSettings struct {
	Memory      uint32 `yaml:"memory" env:"HASH_MEMORY"`
	Iterations  uint32 `yaml:"iterations" env:"HASH_ITERATIONS"`
	Parallelism uint8  `yaml:"parallelism" env:"HASH_PARALLELISM"`
	SaltLength  uint32 `yaml:"salt_length" env:"HASH_SALT_LENGTH"`
	KeyLength   uint32 `yaml:"key_length" env:"HASH_KEY_LENGTH"`
}

// ModerationSettings configures the ban engine and the auto-ban evaluator.
// A zero ban duration means the ban is permanent.
type ModerationSettings struct {
	SystemActorEmail   string        `yaml:"system_actor_email" env:"MODERATION_SYSTEM_ACTOR_EMAIL"`
	GeneralBanDuration time.Duration `yaml:"general_ban_duration" env:"MODERATION_GENERAL_BAN_DURATION"`
	SpamBanDuration    time.Duration `yaml:"spam_ban_duration" env:"MODERATION_SPAM_BAN_DURATION"`
	EvaluatorWorkers   int           `yaml:"evaluator_workers" env:"MODERATION_EVALUATOR_WORKERS"`
	QueueSize          int           `yaml:"queue_size" env:"MODERATION_QUEUE_SIZE"`
}

// EventsSettings selects the transport of report submission events.
type EventsSettings struct {
	Driver       string   `yaml:"driver" env:"EVENTS_DRIVER"`
	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS"`
	KafkaTopic   string   `yaml:"kafka_topic" env:"KAFKA_REPORT_TOPIC"`
	KafkaGroupID string   `yaml:"kafka_group_id" env:"KAFKA_GROUP_ID"`
}

// RedisSettings configures the optional Redis connection.
type RedisSettings struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	URL     string `yaml:"url" env:"REDIS_URL"`
}

// NotifierSettings configures account notifications.
type NotifierSettings struct {
	Driver         string `yaml:"driver" env:"NOTIFIER_DRIVER"`
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromEmail      string `yaml:"from_email" env:"NOTIFIER_FROM_EMAIL"`
	FromName       string `yaml:"from_name" env:"NOTIFIER_FROM_NAME"`
	SupportEmail   string `yaml:"support_email" env:"NOTIFIER_SUPPORT_EMAIL"`
}

// GoogleSettings contains Google sign-in settings
type GoogleSettings struct {
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	TokenInfoURL string `yaml:"token_info_url" env:"GOOGLE_TOKEN_INFO_URL"`
}

// LockoutSettings configures failed-login lockout per client IP.
type LockoutSettings struct {
	MaxAttempts int           `yaml:"max_attempts" env:"LOCKOUT_MAX_ATTEMPTS"`
	Window      time.Duration `yaml:"window" env:"LOCKOUT_WINDOW"`
}

// SeedSettings holds the credentials of the administrator created on first
// start. Seeding is skipped while the email is empty.
type SeedSettings struct {
	AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
}

// ConnectionString returns the PostgreSQL connection string
func (dbs *DatabaseSettings) ConnectionString() string {
	sslParams := constants.PostgresSSLDisable
	if dbs.SSL {
		sslParams = constants.PostgresSSLRequire
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s %s",
		dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name, sslParams,
	)
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

var (
	// cfg holds the current application configuration
	cfg *AppConfig
)

// Load loads the configuration from a config file and environment variables.
//
// Parameters:
//   - configPath: Path to the YAML file; a missing file is skipped
//
// Returns:
//   - The configuration with defaults applied and validated
//   - An error if the file cannot be parsed or a setting is invalid
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		err = yaml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = config

	// Log the configuration (but hide sensitive values)
	logConfig(config)

	return config, nil
}

// Get returns the current application configuration
func Get() *AppConfig {
	if cfg == nil {
		log.Fatal().Msg("configuration not loaded")
	}
	return cfg
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	if config.Database.Port == 0 {
		config.Database.Port = constants.DefaultDBPort
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	// JWT defaults
	if config.JWT.Expiry == 0 {
		config.JWT.Expiry = constants.DefaultJWTExpiry
	}
	if config.JWT.RefreshExpiry == 0 {
		config.JWT.RefreshExpiry = constants.DefaultJWTRefreshExpiry
	}
	if config.JWT.Issuer == "" {
		config.JWT.Issuer = constants.DefaultJWTIssuer
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}

	// Password hash defaults
	if config.PasswordHash.Memory == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Memory = constants.DefaultPasswordHashMemory
		} else {
			config.PasswordHash.Memory = constants.DevPasswordHashMemory
		}
	}
	if config.PasswordHash.Iterations == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Iterations = constants.DefaultPasswordHashIterations
		} else {
			config.PasswordHash.Iterations = constants.DevPasswordHashIterations
		}
	}
	if config.PasswordHash.Parallelism == 0 {
		config.PasswordHash.Parallelism = constants.DefaultPasswordHashParallelism
	}
	if config.PasswordHash.SaltLength == 0 {
		config.PasswordHash.SaltLength = constants.DefaultPasswordHashSaltLength
	}
	if config.PasswordHash.KeyLength == 0 {
		config.PasswordHash.KeyLength = constants.DefaultPasswordHashKeyLength
	}

	// Moderation defaults. Ban durations stay zero (permanent) unless configured.
	if config.Moderation.SystemActorEmail == "" {
		config.Moderation.SystemActorEmail = constants.DefaultSystemActorEmail
	}
	if config.Moderation.EvaluatorWorkers == 0 {
		config.Moderation.EvaluatorWorkers = constants.DefaultEvaluatorWorkers
	}
	if config.Moderation.QueueSize == 0 {
		config.Moderation.QueueSize = constants.DefaultEvaluatorQueueSize
	}

	if config.Events.Driver == "" {
		config.Events.Driver = constants.DefaultEventsDriver
	}
	if config.Events.KafkaTopic == "" {
		config.Events.KafkaTopic = constants.DefaultKafkaReportTopic
	}
	if config.Events.KafkaGroupID == "" {
		config.Events.KafkaGroupID = constants.DefaultKafkaGroupID
	}

	if config.Notifier.Driver == "" {
		config.Notifier.Driver = constants.DefaultNotifierDriver
	}
	if config.Notifier.FromEmail == "" {
		config.Notifier.FromEmail = constants.DefaultNotifierFromEmail
	}
	if config.Notifier.FromName == "" {
		config.Notifier.FromName = constants.DefaultNotifierFromName
	}
	if config.Notifier.SupportEmail == "" {
		config.Notifier.SupportEmail = constants.DefaultSupportEmail
	}

	if config.Google.TokenInfoURL == "" {
		config.Google.TokenInfoURL = constants.GoogleTokenInfoURL
	}

	if config.Lockout.MaxAttempts == 0 {
		config.Lockout.MaxAttempts = constants.DefaultLockoutMaxAttempts
	}
	if config.Lockout.Window == 0 {
		config.Lockout.Window = constants.DefaultLockoutWindow
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	// In production, ensure we have a proper JWT secret
	if config.App.IsProduction() && (config.JWT.Secret == "" || config.JWT.Secret == "changeme") {
		return fmt.Errorf("JWT secret must be set in production")
	}

	if config.Database.User == "" {
		return fmt.Errorf("database user must be set")
	}

	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Moderation.GeneralBanDuration < 0 || config.Moderation.SpamBanDuration < 0 {
		return fmt.Errorf("auto-ban durations must not be negative")
	}

	switch config.Events.Driver {
	case "memory":
	case "kafka":
		if len(config.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka events driver requires at least one broker")
		}
	default:
		return fmt.Errorf("invalid events driver: %s", config.Events.Driver)
	}

	switch config.Notifier.Driver {
	case "noop":
	case "sendgrid":
		if config.Notifier.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid notifier requires an API key")
		}
	default:
		return fmt.Errorf("invalid notifier driver: %s", config.Notifier.Driver)
	}

	if config.Redis.Enabled && config.Redis.URL == "" {
		return fmt.Errorf("redis url must be set when redis is enabled")
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	logCfg := *config

	if logCfg.Database.Password != "" {
		logCfg.Database.Password = constants.LogRedactedValue
	}
	if logCfg.JWT.Secret != "" {
		logCfg.JWT.Secret = constants.LogRedactedValue
	}
	if logCfg.Notifier.SendGridAPIKey != "" {
		logCfg.Notifier.SendGridAPIKey = constants.LogRedactedValue
	}
	if logCfg.Seed.AdminPassword != "" {
		logCfg.Seed.AdminPassword = constants.LogRedactedValue
	}

	log.Info().
		Str("environment", logCfg.App.Environment).
		Str("version", logCfg.App.Version).
		Str("server", logCfg.Server.ServerAddress()).
		Str("db_host", logCfg.Database.Host).
		Int("db_port", logCfg.Database.Port).
		Str("db_name", logCfg.Database.Name).
		Str("log_level", logCfg.Logging.Level).
		Str("events_driver", logCfg.Events.Driver).
		Str("notifier_driver", logCfg.Notifier.Driver).
		Bool("redis_enabled", logCfg.Redis.Enabled).
		Str("system_actor", logCfg.Moderation.SystemActorEmail).
		Msg("Configuration loaded")
}
