package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config_test.yaml")
	configContent := `
app:
  environment: testing
  name: TestApp
  version: 1.0.0
server:
  host: 127.0.0.1
  port: 8080
  read_timeout: 5s
  write_timeout: 10s
database:
  host: localhost
  port: 5432
  name: test_db
  user: testuser
  password: testpass
moderation:
  system_actor_email: robot@example.com
  spam_ban_duration: 72h
events:
  driver: memory
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Environment != "testing" {
		t.Errorf("Expected Environment = %s, got %s", "testing", cfg.App.Environment)
	}
	if cfg.App.Name != "TestApp" {
		t.Errorf("Expected Name = %s, got %s", "TestApp", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected Port = %d, got %d", 8080, cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected Host = %s, got %s", "localhost", cfg.Database.Host)
	}
	if cfg.Moderation.SystemActorEmail != "robot@example.com" {
		t.Errorf("Expected SystemActorEmail = %s, got %s", "robot@example.com", cfg.Moderation.SystemActorEmail)
	}
	if cfg.Moderation.SpamBanDuration != 72*time.Hour {
		t.Errorf("Expected SpamBanDuration = %v, got %v", 72*time.Hour, cfg.Moderation.SpamBanDuration)
	}
	if cfg.Moderation.GeneralBanDuration != 0 {
		t.Errorf("Expected GeneralBanDuration to stay permanent, got %v", cfg.Moderation.GeneralBanDuration)
	}
}

func TestLoadWithInvalidPath(t *testing.T) {
	t.Setenv("DB_USER", "envuser")

	cfg, err := Load(filepath.Join(t.TempDir(), "non_existent_config.yaml"))
	if err != nil {
		t.Fatalf("Load() with non-existent file should not error, got %v", err)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("Expected default Environment = %s, got %s", "development", cfg.App.Environment)
	}
	if cfg.Database.User != "envuser" {
		t.Errorf("Expected Database.User from env = %s, got %s", "envuser", cfg.Database.User)
	}
}

func TestLoadWithInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(configPath, []byte("app: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() with malformed YAML should error")
	}
}

func TestGet(t *testing.T) {
	origCfg := cfg
	defer func() { cfg = origCfg }()

	testCfg := &AppConfig{
		App: AppSettings{
			Name: "TestApp",
		},
	}
	cfg = testCfg

	if result := Get(); result != testCfg {
		t.Errorf("Get() = %v, want %v", result, testCfg)
	}
}

func TestDatabaseSettings_ConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		settings DatabaseSettings
		want     string
	}{
		{
			name: "Without SSL",
			settings: DatabaseSettings{
				Host:     "localhost",
				Port:     5432,
				Name:     "testdb",
				User:     "user",
				Password: "pass",
			},
			want: "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable connect_timeout=15",
		},
		{
			name: "With SSL",
			settings: DatabaseSettings{
				Host:     "db.internal",
				Port:     5433,
				Name:     "testdb",
				User:     "user",
				Password: "pass",
				SSL:      true,
			},
			want: "host=db.internal port=5433 user=user password=pass dbname=testdb sslmode=require connect_timeout=15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if connStr := tt.settings.ConnectionString(); connStr != tt.want {
				t.Errorf("ConnectionString() = %v, want %v", connStr, tt.want)
			}
		})
	}
}

func TestServerSettings_ServerAddress(t *testing.T) {
	settings := ServerSettings{
		Host: "localhost",
		Port: 8080,
	}

	want := "localhost:8080"
	if got := settings.ServerAddress(); got != want {
		t.Errorf("ServerAddress() = %v, want %v", got, want)
	}
}

func TestAppSettings_Environment(t *testing.T) {
	tests := []struct {
		name         string
		environment  string
		isDev        bool
		isProduction bool
		isTesting    bool
	}{
		{name: "Development", environment: "development", isDev: true},
		{name: "Production", environment: "production", isProduction: true},
		{name: "Testing", environment: "testing", isTesting: true},
		{name: "Mixed case", environment: "Production", isProduction: true},
		{name: "Unknown", environment: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := AppSettings{Environment: tt.environment}

			if got := settings.IsDevelopment(); got != tt.isDev {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.isDev)
			}
			if got := settings.IsProduction(); got != tt.isProduction {
				t.Errorf("IsProduction() = %v, want %v", got, tt.isProduction)
			}
			if got := settings.IsTesting(); got != tt.isTesting {
				t.Errorf("IsTesting() = %v, want %v", got, tt.isTesting)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &AppConfig{}
	setDefaults(cfg)

	if cfg.App.Environment != "development" {
		t.Errorf("Default App.Environment = %v, want %v", cfg.App.Environment, "development")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Default Server.Port = %v, want %v", cfg.Server.Port, 8080)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Default Database.Port = %v, want %v", cfg.Database.Port, 5432)
	}
	if cfg.JWT.Expiry != 15*time.Minute {
		t.Errorf("Default JWT.Expiry = %v, want %v", cfg.JWT.Expiry, 15*time.Minute)
	}
	if cfg.JWT.RefreshExpiry != 7*24*time.Hour {
		t.Errorf("Default JWT.RefreshExpiry = %v, want %v", cfg.JWT.RefreshExpiry, 7*24*time.Hour)
	}
	if cfg.Moderation.SystemActorEmail != "system@collapse.app" {
		t.Errorf("Default Moderation.SystemActorEmail = %v, want %v", cfg.Moderation.SystemActorEmail, "system@collapse.app")
	}
	if cfg.Moderation.GeneralBanDuration != 0 || cfg.Moderation.SpamBanDuration != 0 {
		t.Errorf("Default auto-ban durations should be permanent, got %v and %v",
			cfg.Moderation.GeneralBanDuration, cfg.Moderation.SpamBanDuration)
	}
	if cfg.Events.Driver != "memory" {
		t.Errorf("Default Events.Driver = %v, want %v", cfg.Events.Driver, "memory")
	}
	if cfg.Notifier.Driver != "noop" {
		t.Errorf("Default Notifier.Driver = %v, want %v", cfg.Notifier.Driver, "noop")
	}
	if cfg.Lockout.MaxAttempts != 5 || cfg.Lockout.Window != time.Hour {
		t.Errorf("Default Lockout = %d/%v, want 5/1h", cfg.Lockout.MaxAttempts, cfg.Lockout.Window)
	}
}

func validConfig() *AppConfig {
	c := &AppConfig{
		Database: DatabaseSettings{User: "testuser"},
		JWT:      JWTSettings{Secret: "some-secret"},
	}
	setDefaults(c)
	return c
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *AppConfig)
		shouldErr bool
	}{
		{
			name:   "Valid config",
			mutate: func(c *AppConfig) {},
		},
		{
			name:   "Invalid environment falls back to development",
			mutate: func(c *AppConfig) { c.App.Environment = "invalid" },
		},
		{
			name: "Production without JWT secret",
			mutate: func(c *AppConfig) {
				c.App.Environment = "production"
				c.JWT.Secret = "changeme"
			},
			shouldErr: true,
		},
		{
			name:      "Missing database user",
			mutate:    func(c *AppConfig) { c.Database.User = "" },
			shouldErr: true,
		},
		{
			name:      "Invalid log level",
			mutate:    func(c *AppConfig) { c.Logging.Level = "invalid" },
			shouldErr: true,
		},
		{
			name:      "Negative auto-ban duration",
			mutate:    func(c *AppConfig) { c.Moderation.SpamBanDuration = -time.Hour },
			shouldErr: true,
		},
		{
			name:      "Kafka without brokers",
			mutate:    func(c *AppConfig) { c.Events.Driver = "kafka" },
			shouldErr: true,
		},
		{
			name: "Kafka with brokers",
			mutate: func(c *AppConfig) {
				c.Events.Driver = "kafka"
				c.Events.KafkaBrokers = []string{"localhost:9092"}
			},
		},
		{
			name:      "Unknown events driver",
			mutate:    func(c *AppConfig) { c.Events.Driver = "carrier-pigeon" },
			shouldErr: true,
		},
		{
			name:      "SendGrid without API key",
			mutate:    func(c *AppConfig) { c.Notifier.Driver = "sendgrid" },
			shouldErr: true,
		},
		{
			name:      "Redis enabled without URL",
			mutate:    func(c *AppConfig) { c.Redis.Enabled = true },
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := validateConfig(c)
			if (err != nil) != tt.shouldErr {
				t.Errorf("validateConfig() error = %v, shouldErr %v", err, tt.shouldErr)
			}
		})
	}
}
