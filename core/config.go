package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	EnvConfigFile    = "PHOTODNA_CONFIG"
	EnvLibraryDir    = "PHOTODNA_LIBRARY_DIR"
	EnvLibraryPath   = "PHOTODNA_LIBRARY_PATH"
	EnvLibrarySHA256 = "PHOTODNA_LIBRARY_SHA256"
	EnvMaxThreads    = "PHOTODNA_MAX_THREADS"
	EnvPixelFormat   = "PHOTODNA_PIXEL_FORMAT"
	EnvDBPath        = "PHOTODNA_DB_PATH"
	EnvDBBusyTimeout = "PHOTODNA_DB_BUSY_TIMEOUT"
	EnvDBSynchronous = "PHOTODNA_DB_SYNCHRONOUS"
	EnvLogFile       = "PHOTODNA_LOG_FILE"
	EnvLogLevel      = "PHOTODNA_LOG_LEVEL"
	EnvDevMode       = "DEV_MODE"
	EnvRedactHashes  = "PHOTODNA_REDACT_HASHES"
	EnvMetricsAddr   = "PHOTODNA_METRICS_ADDR"
	EnvScanRate      = "PHOTODNA_SCAN_RATE"
	EnvRetentionDays = "PHOTODNA_RETENTION_DAYS"
)

// DefaultConfigFile is read when no config path is given. It may be absent.
const DefaultConfigFile = "photodna.yaml"

// Config holds the CLI settings. Defaults are overridden by the YAML file, and the YAML
// file by the environment.
type Config struct {
	// Native library
	LibraryDir    string `yaml:"library_dir"`
	LibraryPath   string `yaml:"library_path"`
	LibrarySHA256 string `yaml:"library_sha256"`
	MaxThreads    int    `yaml:"max_threads"`
	PixelFormat   string `yaml:"pixel_format"`

	// Storage
	DBPath        string        `yaml:"db_path"`
	DBBusyTimeout time.Duration `yaml:"db_busy_timeout"`
	DBSynchronous string        `yaml:"db_synchronous"`
	RetentionDays int           `yaml:"retention_days"`

	// Logging
	LogFile      string `yaml:"log_file"`
	LogLevel     string `yaml:"log_level"`
	DevMode      bool   `yaml:"dev_mode"`
	RedactHashes bool   `yaml:"redact_hashes"`

	// Batch scanning
	MetricsAddr string  `yaml:"metrics_addr"`
	ScanRate    float64 `yaml:"scan_rate"`

	// Source is the config file that was loaded, or "" when none was.
	Source string `yaml:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxThreads:    4,
		PixelFormat:   "rgb",
		DBPath:        "photodna.db",
		DBBusyTimeout: 5 * time.Second,
		DBSynchronous: "NORMAL",
		LogFile:       "photodna.log",
		LogLevel:      "info",
		RedactHashes:  true,
	}
}

// LoadConfig builds the configuration. path names a YAML file; when empty,
// PHOTODNA_CONFIG is used, then DefaultConfigFile. An explicitly named file must exist,
// the default one may be missing.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = GetEnvOrDefault(EnvConfigFile, "")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigFile
	}

	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigFile(path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnv() {
	c.LibraryDir = GetEnvOrDefault(EnvLibraryDir, c.LibraryDir)
	c.LibraryPath = GetEnvOrDefault(EnvLibraryPath, c.LibraryPath)
	c.LibrarySHA256 = GetEnvOrDefault(EnvLibrarySHA256, c.LibrarySHA256)
	c.MaxThreads = ParseIntEnv(EnvMaxThreads, c.MaxThreads)
	c.PixelFormat = GetEnvOrDefault(EnvPixelFormat, c.PixelFormat)
	c.DBPath = GetEnvOrDefault(EnvDBPath, c.DBPath)
	c.DBBusyTimeout = ParseDurationEnv(EnvDBBusyTimeout, c.DBBusyTimeout)
	c.DBSynchronous = GetEnvOrDefault(EnvDBSynchronous, c.DBSynchronous)
	c.RetentionDays = ParseIntEnv(EnvRetentionDays, c.RetentionDays)
	c.LogFile = GetEnvOrDefault(EnvLogFile, c.LogFile)
	c.LogLevel = GetEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.DevMode = ParseBoolEnv(EnvDevMode, c.DevMode)
	c.RedactHashes = ParseBoolEnv(EnvRedactHashes, c.RedactHashes)
	c.MetricsAddr = GetEnvOrDefault(EnvMetricsAddr, c.MetricsAddr)
	c.ScanRate = ParseFloat64Env(EnvScanRate, c.ScanRate)
}

// Validate clamps MaxThreads to at least 1 and rejects values that cannot be used.
func (c *Config) Validate() error {
	if c.MaxThreads < 1 {
		c.MaxThreads = 1
	}
	c.LibrarySHA256 = strings.ToLower(strings.TrimSpace(c.LibrarySHA256))
	if c.LibrarySHA256 != "" && len(c.LibrarySHA256) != 64 {
		return ErrInvalidValue(EnvLibrarySHA256, c.LibrarySHA256, "expected 64 hex characters")
	}
	if c.ScanRate < 0 {
		return ErrInvalidValue(EnvScanRate, fmt.Sprint(c.ScanRate), "must be 0 (unlimited) or positive")
	}
	if c.RetentionDays < 0 {
		return ErrInvalidValue(EnvRetentionDays, fmt.Sprint(c.RetentionDays), "must be 0 (keep forever) or positive")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return ErrMissingConfig(EnvDBPath)
	}
	if c.DBBusyTimeout < 0 {
		return ErrInvalidValue(EnvDBBusyTimeout, c.DBBusyTimeout.String(), "must not be negative")
	}
	c.DBSynchronous = strings.ToUpper(strings.TrimSpace(c.DBSynchronous))
	switch c.DBSynchronous {
	case "", "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return ErrInvalidValue(EnvDBSynchronous, c.DBSynchronous, "expected OFF, NORMAL, FULL or EXTRA")
	}
	return nil
}

// HasLibrary reports whether a library location is configured.
func (c *Config) HasLibrary() bool {
	return c.LibraryDir != "" || c.LibraryPath != ""
}
