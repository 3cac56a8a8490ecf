package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearConfigEnv blanks every variable LoadConfig reads.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigFile, EnvLibraryDir, EnvLibraryPath, EnvLibrarySHA256, EnvMaxThreads,
		EnvPixelFormat, EnvDBPath, EnvDBBusyTimeout, EnvDBSynchronous, EnvLogFile, EnvLogLevel, EnvDevMode, EnvRedactHashes,
		EnvMetricsAddr, EnvScanRate, EnvRetentionDays,
	} {
		t.Setenv(key, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photodna.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.MaxThreads != 4 || cfg.PixelFormat != "rgb" || cfg.DBPath != "photodna.db" || !cfg.RedactHashes {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Source != "" || cfg.HasLibrary() {
		t.Errorf("Source = %q, HasLibrary = %v", cfg.Source, cfg.HasLibrary())
	}
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	clearConfigEnv(t)
	path := writeYAML(t, `
library_dir: /opt/photodna
max_threads: 8
pixel_format: bgra
scan_rate: 2.5
retention_days: 30
`)
	t.Setenv(EnvMaxThreads, "2")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.LibraryDir != "/opt/photodna" || cfg.PixelFormat != "bgra" || cfg.ScanRate != 2.5 || cfg.RetentionDays != 30 {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
	if cfg.MaxThreads != 2 {
		t.Errorf("env should override yaml: MaxThreads = %d", cfg.MaxThreads)
	}
	if cfg.Source != path || !cfg.HasLibrary() {
		t.Errorf("Source = %q", cfg.Source)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearConfigEnv(t)
	path := writeYAML(t, "db_path: hashes.db\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "hashes.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		env      map[string]string
		missing  bool
		wantCode string
	}{
		{name: "missing explicit file", missing: true, wantCode: ErrCodeConfigFile},
		{name: "bad yaml", yaml: "max_threads: [", wantCode: ErrCodeConfigFile},
		{name: "negative rate", yaml: "scan_rate: -1\n", wantCode: ErrCodeInvalidValue},
		{name: "negative retention", env: map[string]string{EnvRetentionDays: "-3"}, wantCode: ErrCodeInvalidValue},
		{name: "short checksum", env: map[string]string{EnvLibrarySHA256: "abc"}, wantCode: ErrCodeInvalidValue},
		{name: "unknown synchronous", env: map[string]string{EnvDBSynchronous: "sometimes"}, wantCode: ErrCodeInvalidValue},
		{name: "negative busy timeout", yaml: "db_busy_timeout: -1s\n", wantCode: ErrCodeInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if !tt.missing {
				path = writeYAML(t, tt.yaml)
			}

			_, err := LoadConfig(path)
			if got := GetErrorCode(err); got != tt.wantCode {
				t.Errorf("error code = %q (%v), want %q", got, err, tt.wantCode)
			}
		})
	}
}

func TestLoadConfigDatabaseSettings(t *testing.T) {
	clearConfigEnv(t)
	path := writeYAML(t, "db_busy_timeout: 2s\ndb_synchronous: full\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.DBBusyTimeout != 2*time.Second || cfg.DBSynchronous != "FULL" {
		t.Errorf("yaml values: timeout %s, synchronous %q", cfg.DBBusyTimeout, cfg.DBSynchronous)
	}

	t.Setenv(EnvDBBusyTimeout, "750ms")
	t.Setenv(EnvDBSynchronous, "off")
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBBusyTimeout != 750*time.Millisecond || cfg.DBSynchronous != "OFF" {
		t.Errorf("env values: timeout %s, synchronous %q", cfg.DBBusyTimeout, cfg.DBSynchronous)
	}
}

func TestValidateClampsThreads(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxThreads = -5
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxThreads != 1 {
		t.Errorf("MaxThreads = %d, want 1", cfg.MaxThreads)
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := ErrConfigFile("x.yaml", cause)
	if !errors.Is(err, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}
	if ce, ok := IsConfigError(err); !ok || ce.Code != ErrCodeConfigFile {
		t.Errorf("IsConfigError = %v, %v", ce, ok)
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Error("plain errors have no code")
	}
}
