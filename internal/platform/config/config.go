package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// DBDSN vacío => store in-memory (modo dev).
	DBDSN          string
	DBMaxOpenConns int
	MigrateOnStart bool

	// JWTSecret vacío => modo dev con header X-Debug-User-ID.
	JWTSecret string

	// AuthVerifyURL tiene prioridad sobre JWTSecret: los tokens los valida
	// el proveedor de identidad externo.
	AuthVerifyURL string
	AuthAPIKey    string

	LogLevel  string
	LogFormat string
	AppName   string

	// Si true, retirar un animal libera su lugar en el hábitat.
	ReleaseHabitatOnRetire bool

	AuditTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load lee un .env opcional y luego variables de entorno.
// Las variables ya definidas en el entorno tienen prioridad sobre el .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv construye la config desde un lookup arbitrario (tests).
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:            firstNonEmpty(getenv("PORT"), "8080"),
		DBDSN:           strings.TrimSpace(getenv("DB_DSN")),
		JWTSecret:       strings.TrimSpace(getenv("JWT_SECRET")),
		AuthVerifyURL:   strings.TrimSpace(getenv("AUTH_VERIFY_URL")),
		AuthAPIKey:      strings.TrimSpace(getenv("AUTH_API_KEY")),
		LogLevel:        getenv("LOG_LEVEL"),
		LogFormat:       getenv("LOG_FORMAT"),
		AppName:         firstNonEmpty(getenv("APP_NAME"), "animal-sanctuary"),
		DBMaxOpenConns:  10,
		MigrateOnStart:  true,
		AuditTimeout:    5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	var err error
	if cfg.ReleaseHabitatOnRetire, err = parseBool(getenv, "RELEASE_HABITAT_ON_RETIRE", false); err != nil {
		return Config{}, err
	}
	if cfg.MigrateOnStart, err = parseBool(getenv, "DB_MIGRATE", cfg.MigrateOnStart); err != nil {
		return Config{}, err
	}
	if cfg.AuditTimeout, err = parseDuration(getenv, "AUDIT_TIMEOUT", cfg.AuditTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDuration(getenv, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(getenv("DB_MAX_OPEN_CONNS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be a positive integer, got %q", v)
		}
		cfg.DBMaxOpenConns = n
	}

	if cfg.AuthVerifyURL != "" && cfg.AuthAPIKey == "" {
		return Config{}, errors.New("AUTH_API_KEY is required when AUTH_VERIFY_URL is set")
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
