// Package config provides configuration loading and management for the extension registry.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kanade-dev/extrepo/internal/telemetry"
)

// EnvPrefix is the prefix for environment variables read through viper
const EnvPrefix = "EXTREPO"

// StorageType identifies the backend used to persist extension repositories
type StorageType string

const (
	// StorageTypeFile stores repositories in a JSON document on local disk
	StorageTypeFile StorageType = "file"

	// StorageTypeDatabase stores repositories in PostgreSQL
	StorageTypeDatabase StorageType = "database"
)

const (
	defaultDataDir              = "./data"
	defaultHTTPTimeout          = 30 * time.Second
	defaultSyncInterval         = 6 * time.Hour
	defaultMaxConcurrentFetches = 8

	// DefaultLibVersionMin is the oldest extension library version this build can load
	DefaultLibVersionMin = 1.4

	// DefaultLibVersionMax is the newest extension library version this build can load
	DefaultLibVersionMax = 1.5
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
	v    *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// WithViper overlays environment values read through the given viper instance
func WithViper(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		cfg.v = v
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	FileStorage *FileStorageConfig `yaml:"fileStorage,omitempty"`
	Database    *DatabaseConfig    `yaml:"database,omitempty"`
	HTTP        *HTTPConfig        `yaml:"http,omitempty"`
	Extensions  *ExtensionsConfig  `yaml:"extensions,omitempty"`
	Sync        *SyncConfig        `yaml:"sync,omitempty"`
	Telemetry   *telemetry.Config  `yaml:"telemetry,omitempty"`
	Auth        *AuthConfig        `yaml:"auth,omitempty"`
}

// FileStorageConfig defines local file storage settings
type FileStorageConfig struct {
	// BaseDir holds repos.json and its lock file. Defaults to ./data
	BaseDir string `yaml:"baseDir,omitempty"`
}

// HTTPConfig defines outbound HTTP client settings
type HTTPConfig struct {
	// Timeout bounds each remote request (e.g. "30s")
	Timeout string `yaml:"timeout,omitempty"`

	// IndexCacheTTL keeps fetched index listings in memory (e.g. "5m"). Empty disables caching.
	IndexCacheTTL string `yaml:"indexCacheTTL,omitempty"`
}

// ExtensionsConfig defines which extension index entries are considered compatible
type ExtensionsConfig struct {
	LibVersionMin        float64 `yaml:"libVersionMin,omitempty"`
	LibVersionMax        float64 `yaml:"libVersionMax,omitempty"`
	MaxConcurrentFetches int     `yaml:"maxConcurrentFetches,omitempty"`

	// Filter is applied to every extension listing
	Filter *FilterConfig `yaml:"filter,omitempty"`
}

// FilterConfig defines which available extensions are listed
type FilterConfig struct {
	// Packages are glob patterns matched against package names
	Packages *PatternFilterConfig `yaml:"packages,omitempty"`

	// Languages are matched exactly against the extension and source languages
	Languages *PatternFilterConfig `yaml:"languages,omitempty"`

	HideNSFW bool `yaml:"hideNsfw,omitempty"`
}

// PatternFilterConfig lists include and exclude rules. Exclude takes precedence.
type PatternFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// SyncConfig defines the background repository refresh schedule
type SyncConfig struct {
	Interval string `yaml:"interval,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	password string
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		FileStorage: &FileStorageConfig{BaseDir: defaultDataDir},
	}
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Value set from the EXTREPO_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if d.password != "" {
		return d.password, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable", EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// GetConnMaxLifetime returns the parsed connection lifetime, or zero when unset
func (d *DatabaseConfig) GetConnMaxLifetime() (time.Duration, error) {
	if d.ConnMaxLifetime == "" {
		return 0, nil
	}
	return time.ParseDuration(d.ConnMaxLifetime)
}

// LoadConfig loads and parses configuration from a YAML file.
// Without a path the defaults are used; environment overrides apply either way.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	config := Default()
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config = &Config{}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if loaderCfg.v != nil {
		config.applyEnv(loaderCfg.v)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// NewEnvViper returns a viper instance reading EXTREPO_* environment variables
func NewEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// applyEnv overlays environment values on top of the file configuration
func (c *Config) applyEnv(v *viper.Viper) {
	if c.Database != nil {
		if password := v.GetString("database.password"); password != "" {
			c.Database.password = password
		}
		if host := v.GetString("database.host"); host != "" {
			c.Database.Host = host
		}
	}
	if dir := v.GetString("data_dir"); dir != "" && c.Database == nil {
		if c.FileStorage == nil {
			c.FileStorage = &FileStorageConfig{}
		}
		c.FileStorage.BaseDir = dir
	}
}

// GetStorageType returns the configured backend. Database wins when both are set.
func (c *Config) GetStorageType() StorageType {
	if c.Database != nil {
		return StorageTypeDatabase
	}
	return StorageTypeFile
}

// GetFileStorageBaseDir returns the directory used by file storage
func (c *Config) GetFileStorageBaseDir() string {
	if c.FileStorage == nil || c.FileStorage.BaseDir == "" {
		return defaultDataDir
	}
	return c.FileStorage.BaseDir
}

// GetHTTPTimeout returns the outbound request timeout
func (c *Config) GetHTTPTimeout() time.Duration {
	if c.HTTP == nil || c.HTTP.Timeout == "" {
		return defaultHTTPTimeout
	}
	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return defaultHTTPTimeout
	}
	return d
}

// GetIndexCacheTTL returns how long index listings are cached; zero disables caching
func (c *Config) GetIndexCacheTTL() time.Duration {
	if c.HTTP == nil || c.HTTP.IndexCacheTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.HTTP.IndexCacheTTL)
	if err != nil {
		return 0
	}
	return d
}

// GetLibVersionRange returns the inclusive supported library version range
func (c *Config) GetLibVersionRange() (float64, float64) {
	lo, hi := DefaultLibVersionMin, DefaultLibVersionMax
	if c.Extensions != nil {
		if c.Extensions.LibVersionMin != 0 {
			lo = c.Extensions.LibVersionMin
		}
		if c.Extensions.LibVersionMax != 0 {
			hi = c.Extensions.LibVersionMax
		}
	}
	return lo, hi
}

// GetMaxConcurrentFetches returns the fan-out limit for index fetches
func (c *Config) GetMaxConcurrentFetches() int {
	if c.Extensions == nil || c.Extensions.MaxConcurrentFetches <= 0 {
		return defaultMaxConcurrentFetches
	}
	return c.Extensions.MaxConcurrentFetches
}

// GetExtensionFilter returns the configured listing filter, nil when none is set
func (c *Config) GetExtensionFilter() *FilterConfig {
	if c.Extensions == nil {
		return nil
	}
	return c.Extensions.Filter
}

// GetSyncInterval returns the background refresh interval
func (c *Config) GetSyncInterval() time.Duration {
	if c.Sync == nil || c.Sync.Interval == "" {
		return defaultSyncInterval
	}
	d, err := time.ParseDuration(c.Sync.Interval)
	if err != nil || d <= 0 {
		return defaultSyncInterval
	}
	return d
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Database != nil {
		if err := validateDatabaseConfig(c.Database); err != nil {
			return err
		}
	}

	if c.HTTP != nil {
		if err := validateDuration("http.timeout", c.HTTP.Timeout); err != nil {
			return err
		}
		if err := validateDuration("http.indexCacheTTL", c.HTTP.IndexCacheTTL); err != nil {
			return err
		}
	}

	if c.Sync != nil {
		if err := validateDuration("sync.interval", c.Sync.Interval); err != nil {
			return err
		}
		if d, _ := time.ParseDuration(c.Sync.Interval); c.Sync.Interval != "" && d == 0 {
			return fmt.Errorf("sync.interval must be positive")
		}
	}

	lo, hi := c.GetLibVersionRange()
	if lo > hi {
		return fmt.Errorf("extensions.libVersionMin (%v) must not exceed extensions.libVersionMax (%v)", lo, hi)
	}

	if err := validateFilterConfig(c.GetExtensionFilter()); err != nil {
		return err
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	if err := validateAuthConfig(c.Auth); err != nil {
		return err
	}

	return nil
}

func validateDatabaseConfig(db *DatabaseConfig) error {
	if db.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if db.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if db.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if db.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if _, err := db.GetConnMaxLifetime(); err != nil {
		return fmt.Errorf("database.connMaxLifetime must be a valid duration: %w", err)
	}
	return nil
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '30s', '1h'): %w", field, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}

func validateFilterConfig(f *FilterConfig) error {
	if f == nil || f.Packages == nil {
		return nil
	}
	for _, pattern := range append(append([]string{}, f.Packages.Include...), f.Packages.Exclude...) {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("extensions.filter.packages: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}
