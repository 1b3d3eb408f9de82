// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used when the
// configuration leaves a setting unspecified. Changing these values changes
// the behavior of every deployment that relies on them.
package constants

// Default Pagination Values define the parameters used for paginated responses.
const (
	// DefaultPage is the default page number for paginated results when not specified.
	DefaultPage = 1

	// DefaultPageSize is the default number of items per page when not specified.
	DefaultPageSize = 20

	// MaxPageSize is the maximum allowable page size.
	MaxPageSize = 100

	// MinPageSize is the minimum allowable page size.
	MinPageSize = 1
)

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBPort is the default PostgreSQL port.
	DefaultDBPort = 5432

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle database connections kept open.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies.
const MaxRequestBodySize = 1048576 // 1MB

// Default Password Hash Settings define the parameters for Argon2id password hashing.
const (
	// DefaultPasswordHashMemory is the memory cost parameter for Argon2id hashing.
	DefaultPasswordHashMemory = 64 * 1024

	// DefaultPasswordHashIterations is the number of iterations for Argon2id hashing.
	DefaultPasswordHashIterations = 3

	// DefaultPasswordHashParallelism is the number of threads used during hashing.
	DefaultPasswordHashParallelism = 2

	// DefaultPasswordHashSaltLength is the length in bytes of the random salt.
	DefaultPasswordHashSaltLength = 16

	// DefaultPasswordHashKeyLength is the length in bytes of the generated hash.
	DefaultPasswordHashKeyLength = 32

	// DevPasswordHashMemory is a reduced memory setting for development environments.
	DevPasswordHashMemory = 16 * 1024

	// DevPasswordHashIterations is a reduced iteration count for development environments.
	DevPasswordHashIterations = 1
)

// Auth Constants define values related to token handling.
const (
	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "collapse-api"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "

	// GoogleTokenInfoURL is the endpoint used to validate Google ID tokens.
	GoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

	// ProviderGoogle marks accounts created or linked through Google sign-in.
	ProviderGoogle = "google"
)

// Default Moderation Settings.
const (
	// DefaultSystemActorEmail identifies the non-human administrator that
	// automated bans are attributed to.
	DefaultSystemActorEmail = "system@collapse.app"

	// DefaultEvaluatorWorkers is the number of in-process auto-ban workers.
	DefaultEvaluatorWorkers = 4

	// DefaultEvaluatorQueueSize is the capacity of the in-process report event queue.
	DefaultEvaluatorQueueSize = 1024

	// DefaultEventsDriver selects the in-process report event queue.
	DefaultEventsDriver = "memory"

	// DefaultKafkaReportTopic is the topic report submission events are published to.
	DefaultKafkaReportTopic = "moderation.report-submitted"

	// DefaultKafkaGroupID is the consumer group of the auto-ban evaluator.
	DefaultKafkaGroupID = "autoban-evaluator"

	// DefaultNotifierDriver disables outbound notifications.
	DefaultNotifierDriver = "noop"

	// DefaultNotifierFromEmail is the sender address of account notifications.
	DefaultNotifierFromEmail = "noreply@collapse.app"

	// DefaultNotifierFromName is the sender name of account notifications.
	DefaultNotifierFromName = "Collapse"

	// DefaultSupportEmail is shown to users whose accounts were reactivated.
	DefaultSupportEmail = "support@collapse.app"

	// DefaultLockoutMaxAttempts is the number of failed logins tolerated per IP.
	DefaultLockoutMaxAttempts = 5
)
