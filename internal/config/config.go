package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on minimal images

	"github.com/spf13/viper"
)

const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"

	AuthModeDevelopment = "development"
	AuthModeFirebase    = "firebase"
	AuthModeJWT         = "jwt"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"ENV"`
	StoreBackend            string        `mapstructure:"STORE_BACKEND"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	DBMaxConns              int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns              int32         `mapstructure:"DB_MIN_CONNS"`
	FirebaseProjectID       string        `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	AuthMode                string        `mapstructure:"AUTH_MODE"`
	AuthIssuer              string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience            string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey          string        `mapstructure:"AUTH_SIGNING_KEY"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	CacheTTL                time.Duration `mapstructure:"CACHE_TTL"`
	CORSOrigins             []string      `mapstructure:"CORS_ORIGINS"`
	Timezone                string        `mapstructure:"TIMEZONE"`
	DefaultLocale           string        `mapstructure:"DEFAULT_LOCALE"`
	LogoURL                 string        `mapstructure:"LOGO_URL"`
	LogoTimeout             time.Duration `mapstructure:"LOGO_TIMEOUT"`
	HistoryBatchMedications bool          `mapstructure:"HISTORY_BATCH_MEDICATIONS"`
	HistoryParallelism      int           `mapstructure:"HISTORY_PARALLELISM"`
}

var envKeys = []string{
	"PORT", "ENV", "STORE_BACKEND", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"FIREBASE_PROJECT_ID", "FIREBASE_CREDENTIALS_FILE",
	"AUTH_MODE", "AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
	"REDIS_URL", "CACHE_TTL", "CORS_ORIGINS", "TIMEZONE", "DEFAULT_LOCALE",
	"LOGO_URL", "LOGO_TIMEOUT", "HISTORY_BATCH_MEDICATIONS", "HISTORY_PARALLELISM",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("AUTH_MODE", "") // "" -> inferred, see ResolvedAuthMode
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TIMEZONE", "Europe/Madrid")
	v.SetDefault("DEFAULT_LOCALE", "es")
	v.SetDefault("LOGO_TIMEOUT", "3s")
	v.SetDefault("HISTORY_BATCH_MEDICATIONS", true)
	v.SetDefault("HISTORY_PARALLELISM", 4)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if cfg.IsDev() {
		log.Println("WARNING: portal-server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: requests without a bearer token may act as the X-Dev-User header value.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ResolvedAuthMode returns AUTH_MODE when set. Otherwise development
// environments use the dev identity, Firestore deployments verify Firebase
// ID tokens and everything else expects HS256 tokens signed with
// AUTH_SIGNING_KEY.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return AuthModeDevelopment
	}
	if c.StoreBackend == BackendFirestore {
		return AuthModeFirebase
	}
	return AuthModeJWT
}

// Location is the zone used to decide what "today" means for appointment
// dates.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
		if !c.IsDev() {
			return fmt.Errorf("STORE_BACKEND=memory is only allowed when ENV=development")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is %q", BackendPostgres)
		}
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when STORE_BACKEND is %q", BackendFirestore)
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q, %q or %q, got %q",
			BackendMemory, BackendPostgres, BackendFirestore, c.StoreBackend)
	}

	switch mode := c.ResolvedAuthMode(); mode {
	case AuthModeDevelopment:
		if !c.IsDev() {
			return fmt.Errorf("AUTH_MODE=development is only allowed when ENV=development")
		}
	case AuthModeFirebase:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_MODE is %q", AuthModeFirebase)
		}
	case AuthModeJWT:
		if c.AuthSigningKey == "" {
			return fmt.Errorf("AUTH_SIGNING_KEY is required when AUTH_MODE is %q", AuthModeJWT)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q, %q or %q, got %q",
			AuthModeDevelopment, AuthModeFirebase, AuthModeJWT, mode)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.HistoryParallelism < 1 {
		return fmt.Errorf("HISTORY_PARALLELISM must be at least 1, got %d", c.HistoryParallelism)
	}
	return nil
}
