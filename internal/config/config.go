package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/vcscsvcscs/healthscope/pkg/model"
)

// AI providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// DefaultGeminiModel is the model used by the gemini provider when none is configured.
// The openai and azure providers have no default.
const DefaultGeminiModel = "gemini-2.0-flash"

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	AI        AIConfig
	Auth      AuthConfig
	Reminders ReminderConfig
	Emergency EmergencyConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	AllowedOrigins  []string
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Driver          string
	DatabaseURL     string
	BadgerPath      string
	MaxConns        int32
	ConnMaxLifetime time.Duration
}

// AIConfig holds generative model configuration
type AIConfig struct {
	Provider   string
	Model      string
	APIKey     string
	Endpoint   string
	APIVersion string
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	// DevUserHeader lets non-production requests name their user directly
	DevUserHeader string
}

// ReminderConfig configures the reminder dispatcher
type ReminderConfig struct {
	Enabled    bool
	Timezone   string
	WebhookURL string
}

// EmergencyConfig lists the helplines shown to users
type EmergencyConfig struct {
	Contacts []model.EmergencyContact
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// DefaultEmergencyContacts are used when none are configured
var DefaultEmergencyContacts = []model.EmergencyContact{
	{Name: "Police", Number: "100", Description: "Emergency police assistance"},
	{Name: "Ambulance", Number: "108", Description: "Medical emergency services"},
	{Name: "Fire", Number: "101", Description: "Fire and rescue services"},
	{Name: "Cyber Crime", Number: "1930", Description: "Report online fraud and cyber crime"},
}

// Load reads configuration from environment variables and an optional config file
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Read from environment variables
	v.AutomaticEnv()

	// Bind specific environment variables
	bindEnvVars(v)

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.AI.Provider == ProviderGemini && cfg.AI.Model == "" {
		cfg.AI.Model = DefaultGeminiModel
	}

	if len(cfg.Emergency.Contacts) == 0 {
		cfg.Emergency.Contacts = append([]model.EmergencyContact(nil), DefaultEmergencyContacts...)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.readtimeout", 15*time.Second)
	v.SetDefault("server.writetimeout", 60*time.Second)
	v.SetDefault("server.allowedorigins", []string{"*"})

	// Store defaults
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.badgerpath", "data/healthscope")
	v.SetDefault("store.maxconns", 10)
	v.SetDefault("store.connmaxlifetime", 5*time.Minute)

	// AI defaults
	v.SetDefault("ai.provider", ProviderGemini)

	// Auth defaults
	v.SetDefault("auth.devuserheader", "X-User-ID")

	// Reminder defaults
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.timezone", "Asia/Kolkata")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	// Store
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.databaseurl", "DATABASE_URL")
	v.BindEnv("store.badgerpath", "BADGER_PATH")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.apikey", "AI_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY")
	v.BindEnv("ai.endpoint", "AI_ENDPOINT", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("ai.apiversion", "AZURE_OPENAI_API_VERSION")

	// Auth
	v.BindEnv("auth.jwtsecret", "JWT_SECRET")
	v.BindEnv("auth.issuer", "JWT_ISSUER")

	// Reminders
	v.BindEnv("reminders.enabled", "REMINDERS_ENABLED")
	v.BindEnv("reminders.timezone", "REMINDERS_TIMEZONE", "TZ")
	v.BindEnv("reminders.webhookurl", "PUSH_WEBHOOK_URL")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.databaseurl is required for the postgres driver")
		}
	case DriverBadger:
		if c.Store.BadgerPath == "" {
			return fmt.Errorf("store.badgerpath is required for the badger driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	case ProviderAzure:
		if c.AI.Endpoint == "" {
			return fmt.Errorf("ai.endpoint is required for the azure provider")
		}
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}

	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.apikey is required")
	}

	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required for the %s provider", c.AI.Provider)
	}

	if c.Server.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtsecret is required in production")
	}

	if _, err := time.LoadLocation(c.Reminders.Timezone); err != nil {
		return fmt.Errorf("invalid reminders.timezone: %w", err)
	}

	for i, contact := range c.Emergency.Contacts {
		if contact.Name == "" || contact.Number == "" {
			return fmt.Errorf("emergency.contacts[%d] needs a name and a number", i)
		}
	}

	return nil
}
