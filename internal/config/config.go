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
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`
	DB        DBConfig        `yaml:"db"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Workflow  WorkflowConfig  `yaml:"workflow"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the MCP server is exposed.
type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

// StorageConfig selects where the collection documents live.
type StorageConfig struct {
	// Driver is "file" (one JSON file per document under Dir) or "sqlite".
	Driver string `yaml:"driver"`
	Dir    string `yaml:"dir"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type WorkflowConfig struct {
	// DuplicateApplications is "reject_active" or "allow".
	DuplicateApplications string `yaml:"duplicate_applications"`
}

const devSecret = "mobility-dev-secret"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Storage: StorageConfig{
			Driver: "file",
			Dir:    "data",
		},
		DB: DBConfig{
			Path: "mobility.db",
		},
		Auth: AuthConfig{
			Secret:   devSecret,
			TokenTTL: 12 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
		Workflow: WorkflowConfig{
			DuplicateApplications: "reject_active",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file, an optional
// .env file and environment variables, in increasing precedence.
func Load() (Config, error) {
	cfg := Default()

	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	if path := os.Getenv("MOBILITY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadEnvFile populates unset variables from MOBILITY_ENV_FILE or ./.env.
// Variables already present in the environment win.
func loadEnvFile() error {
	path := os.Getenv("MOBILITY_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("MOBILITY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("MOBILITY_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid MOBILITY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("MOBILITY_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("MOBILITY_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dir := os.Getenv("MOBILITY_STORAGE_DIR"); dir != "" {
		cfg.Storage.Dir = dir
	}
	if dbPath := os.Getenv("MOBILITY_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if secret := os.Getenv("MOBILITY_AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if ttl := os.Getenv("MOBILITY_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid MOBILITY_TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenTTL = d
	}
	if level := os.Getenv("MOBILITY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if policy := os.Getenv("MOBILITY_DUPLICATE_APPLICATIONS"); policy != "" {
		cfg.Workflow.DuplicateApplications = policy
	}
	return nil
}

// Validate rejects unknown modes and an unsafe secret on a network listener.
func (c Config) Validate() error {
	switch strings.ToLower(c.Transport.Mode) {
	case "stdio", "http":
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Workflow.DuplicateApplications {
	case "reject_active", "allow":
	default:
		return fmt.Errorf("unknown duplicate application policy %q", c.Workflow.DuplicateApplications)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret required")
	}
	if strings.EqualFold(c.Transport.Mode, "http") && c.Auth.Secret == devSecret {
		return fmt.Errorf("set auth.secret or MOBILITY_AUTH_SECRET before serving http")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
