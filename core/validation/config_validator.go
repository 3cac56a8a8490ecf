package validation

import (
	"errors"
	"fmt"
	"path/filepath"

	"go_photodna/core"
	"go_photodna/photodna"
	"go_photodna/photodnaruntime"
)

// ValidationResult is the outcome of one configuration check. Warning marks a result that
// passed with a caveat.
type ValidationResult struct {
	Valid   bool
	Warning bool
	Message string
	Error   error
}

func passed(msg string) ValidationResult  { return ValidationResult{Valid: true, Message: msg} }
func warning(msg string) ValidationResult { return ValidationResult{Valid: true, Warning: true, Message: msg} }
func failed(msg string, err error) ValidationResult {
	return ValidationResult{Message: msg, Error: err}
}

// ConfigValidator checks a loaded core.Config against the filesystem.
type ConfigValidator struct {
	cfg *core.Config
}

// NewConfigValidator creates a validator for cfg.
func NewConfigValidator(cfg *core.Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// LibraryPath returns the library file the configuration points at.
func (v *ConfigValidator) LibraryPath() (string, error) {
	if v.cfg.LibraryPath != "" {
		return v.cfg.LibraryPath, nil
	}
	if v.cfg.LibraryDir == "" {
		return "", core.ErrMissingConfig(core.EnvLibraryDir)
	}
	return photodnaruntime.LibraryPath(v.cfg.LibraryDir)
}

// CheckConfigFile reports which YAML file was loaded. Running without one is allowed.
func (v *ConfigValidator) CheckConfigFile() ValidationResult {
	if v.cfg.Source == "" {
		return warning("No config file, using defaults and environment")
	}
	return passed("Loaded " + v.cfg.Source)
}

// CheckLibraryDir validates PHOTODNA_LIBRARY_DIR, or accepts PHOTODNA_LIBRARY_PATH in its
// place.
func (v *ConfigValidator) CheckLibraryDir() ValidationResult {
	if v.cfg.LibraryDir == "" {
		if v.cfg.LibraryPath != "" {
			return warning("Library directory unset, using " + core.EnvLibraryPath)
		}
		return failed(core.EnvLibraryDir+" required. Point it at the SDK clientlibrary directory",
			core.ErrMissingConfig(core.EnvLibraryDir))
	}
	if err := CheckDirExists(v.cfg.LibraryDir); err != nil {
		return failed("Library directory not found", core.ErrDirectoryNotFound(core.EnvLibraryDir, v.cfg.LibraryDir))
	}
	return passed(v.cfg.LibraryDir)
}

// CheckLibraryFile verifies the platform library file exists.
func (v *ConfigValidator) CheckLibraryFile() ValidationResult {
	path, err := v.LibraryPath()
	if err != nil {
		if errors.Is(err, photodnaruntime.ErrUnsupportedPlatform) {
			return failed("No PhotoDNA library is built for this platform", err)
		}
		return failed("Library location not configured", err)
	}
	if err := CheckFileExists(path); err != nil {
		return failed("Library file missing", core.ErrLibraryNotFound(path))
	}
	return passed(filepath.Base(path))
}

// CheckLibraryChecksum compares the library against PHOTODNA_LIBRARY_SHA256 when set.
func (v *ConfigValidator) CheckLibraryChecksum() ValidationResult {
	if v.cfg.LibrarySHA256 == "" {
		return warning("No expected checksum configured")
	}
	path, err := v.LibraryPath()
	if err != nil {
		return failed("Library location not configured", err)
	}
	actual, err := core.ComputeSHA256(path)
	if err != nil {
		return failed("Cannot read library", err)
	}
	if actual != v.cfg.LibrarySHA256 {
		return failed("Checksum mismatch", core.ErrChecksumMismatch(path, v.cfg.LibrarySHA256, actual))
	}
	return passed("SHA256 matches")
}

// CheckPixelFormat validates the default pixel format name.
func (v *ConfigValidator) CheckPixelFormat() ValidationResult {
	pf, err := photodna.ParsePixelFormat(v.cfg.PixelFormat)
	if err != nil {
		return failed("Unknown pixel format", core.ErrInvalidValue(core.EnvPixelFormat, v.cfg.PixelFormat, err.Error()))
	}
	return passed(fmt.Sprintf("%s (%d bytes/pixel)", pf, pf.BytesPerPixel()))
}

// CheckDatabaseDir verifies the database directory exists. A missing one is created on
// first use, so it only warns.
func (v *ConfigValidator) CheckDatabaseDir() ValidationResult {
	dir := filepath.Dir(v.cfg.DBPath)
	if err := CheckDirExists(dir); err != nil {
		return warning("Directory will be created: " + dir)
	}
	return passed(v.cfg.DBPath)
}

// CheckDatabaseSpace verifies the database filesystem has MinDatabaseFreeBytes free.
func (v *ConfigValidator) CheckDatabaseSpace() ValidationResult {
	info, err := GetDiskSpace(v.cfg.DBPath)
	if err != nil {
		return failed("Cannot determine free space", err)
	}
	if err := CheckDiskSpace(v.cfg.DBPath, MinDatabaseFreeBytes); err != nil {
		return failed("Low disk space", err)
	}
	return passed(info.FreeFormatted + " free")
}

// ValidateAll runs every check in order.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckConfigFile(),
		v.CheckLibraryDir(),
		v.CheckLibraryFile(),
		v.CheckLibraryChecksum(),
		v.CheckPixelFormat(),
		v.CheckDatabaseDir(),
		v.CheckDatabaseSpace(),
	}
}

// GetFirstError returns the first failing check's error, or nil.
func (v *ConfigValidator) GetFirstError() error {
	for _, r := range v.ValidateAll() {
		if !r.Valid {
			if r.Error != nil {
				return r.Error
			}
			return errors.New(r.Message)
		}
	}
	return nil
}
