package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const minJWTSecretLength = 32

// Config holds every runtime setting of the server and the CLI.
type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	DB struct {
		User       string `yaml:"user"`
		Pass       string `yaml:"pass"`
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		Name       string `yaml:"name"`
		SkipSchema bool   `yaml:"skip_schema"`
	} `yaml:"db"`

	JWT struct {
		Secret     string        `yaml:"secret"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Storage struct {
		Driver    string `yaml:"driver"` // "s3" or "local"
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		PublicURL string `yaml:"public_url"`
		LocalDir  string `yaml:"local_dir"`
		TempDir   string `yaml:"temp_dir"`
	} `yaml:"storage"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Pronounce struct {
		URL string `yaml:"url"`
		Key string `yaml:"key"`
	} `yaml:"pronounce"`

	GTFSFeedURL      string `yaml:"gtfs_feed_url"`
	GTFSFallbackURL  string `yaml:"gtfs_fallback_url"`
	TransitCacheSize int    `yaml:"transit_cache_size"`
	DebugDashboard   bool   `yaml:"debug_dashboard"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	cfg := &Config{Env: "development", Port: "8080"}
	cfg.DB.Host = "127.0.0.1"
	cfg.DB.Port = "3306"
	cfg.JWT.AccessTTL = 30 * time.Minute
	cfg.JWT.RefreshTTL = 14 * 24 * time.Hour
	cfg.Storage.Driver = "local"
	cfg.Storage.LocalDir = "./uploads"
	cfg.Storage.TempDir = filepath.Join(os.TempDir(), "imnotdurnk-voice")
	cfg.SMTP.Port = 587
	cfg.Pronounce.URL = "http://aiopen.etri.re.kr:8000/WiseASR/PronunciationKor"
	cfg.TransitCacheSize = 256
	return cfg
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then environment variables, each layer overriding the previous one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Env, "ENV")
	setString(&c.Port, "PORT")

	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Pass, "DB_PASS")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.Name, "DB_NAME")
	if skip := strings.TrimSpace(os.Getenv("DB_SKIP_SCHEMA")); skip != "" {
		c.DB.SkipSchema = strings.EqualFold(skip, "true") || skip == "1"
	}

	setString(&c.JWT.Secret, "JWT_SECRET")
	if err := setDuration(&c.JWT.AccessTTL, "JWT_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.JWT.RefreshTTL, "JWT_REFRESH_TTL"); err != nil {
		return err
	}

	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.Bucket, "S3_BUCKET")
	setString(&c.Storage.Region, "S3_REGION")
	setString(&c.Storage.PublicURL, "S3_PUBLIC_URL")
	setString(&c.Storage.LocalDir, "LOCAL_STORAGE_DIR")
	setString(&c.Storage.TempDir, "TEMP_DIR")

	setString(&c.SMTP.Host, "SMTP_HOST")
	if err := setInt(&c.SMTP.Port, "SMTP_PORT"); err != nil {
		return err
	}
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "SMTP_FROM")

	setString(&c.Pronounce.URL, "PRONOUNCE_API_URL")
	setString(&c.Pronounce.Key, "PRONOUNCE_API_KEY")

	setString(&c.GTFSFeedURL, "GTFS_FEED_URL")
	setString(&c.GTFSFallbackURL, "GTFS_FALLBACK_URL")
	if err := setInt(&c.TransitCacheSize, "TRANSIT_CACHE_SIZE"); err != nil {
		return err
	}
	if v := strings.TrimSpace(os.Getenv("DEBUG_DASHBOARD")); v != "" {
		c.DebugDashboard = strings.EqualFold(v, "true")
	}
	return nil
}

// Validate rejects settings the server cannot run with. Outside production a
// missing JWT secret falls back to a development value.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET must be set in production")
		}
		c.JWT.Secret = "dev-secret-change-me-dev-secret-change-me"
	}
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters (got %d)", minJWTSecretLength, len(c.JWT.Secret))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("config: S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN builds the go-sql-driver/mysql data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.DB.User, c.DB.Pass, c.DB.Host, c.DB.Port, c.DB.Name)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: invalid %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("config: invalid %s=%q", key, v)
	}
	*dst = d
	return nil
}
