package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type FilesConfig struct {
	RootDir  string `yaml:"root_dir"`
	FontPath string `yaml:"font_path"`
}

type DatabaseConfig struct {
	DSN string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// UserConfig is a dashboard account; passwords are stored as bcrypt hashes only.
type UserConfig struct {
	ID           int    `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type StoreConfig struct {
	Source          string        `yaml:"source"` // postgres | file | mock
	FixturePath     string        `yaml:"fixture_path"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	PhoneRegion     string        `yaml:"phone_region"`
	MockSeed        int64         `yaml:"mock_seed"`
}

type FilterConfig struct {
	Policy   string `yaml:"policy"` // reference | full
	Timezone string `yaml:"timezone"`
}

type EmailConfig struct {
	SMTPHost     string   `yaml:"smtp_host"`
	SMTPPort     int      `yaml:"smtp_port"`
	SMTPUser     string   `yaml:"smtp_user"`
	SMTPPassword string   `yaml:"smtp_password"`
	FromEmail    string   `yaml:"from_email"`
	DigestTo     []string `yaml:"digest_to"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Installed bool   `yaml:"installed"`
}

type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Users    []UserConfig   `yaml:"users"`
	Store    StoreConfig    `yaml:"store"`
	Filter   FilterConfig   `yaml:"filter"`
	Email    EmailConfig    `yaml:"email"`
	Files    FilesConfig    `yaml:"files"`
	Log      LogConfig      `yaml:"log"`
}

// LoadConfig reads .env (if present), then the YAML file at CONFIG_PATH or
// DefaultPath. A missing file is not an error: the app starts uninstalled
// with defaults so the install wizard can write one.
func LoadConfig() (*Config, string, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// uninstalled
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if tz := cfg.Filter.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("filter.timezone %q: %w", tz, err)
		}
	}
	return nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, out, 0o600)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.App.Name == "" {
		cfg.App.Name = "Realty CRM"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 12 * time.Hour
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 24 * time.Hour
	}
	if cfg.Store.Source == "" {
		if cfg.Database.DSN != "" {
			cfg.Store.Source = "postgres"
		} else {
			cfg.Store.Source = "mock"
		}
	}
	if cfg.Store.PhoneRegion == "" {
		cfg.Store.PhoneRegion = "IN"
	}
	if cfg.Store.MockSeed == 0 {
		cfg.Store.MockSeed = 42
	}
	if cfg.Filter.Policy == "" {
		cfg.Filter.Policy = "reference"
	}
	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Location resolves Filter.Timezone, falling back to the process local zone.
// Load has already rejected unknown zones.
func (c *Config) Location() *time.Location {
	if c.Filter.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Filter.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
