package photodna

import (
	"go_photodna/core"
)

// Environment variables read by LoadGeneratorOptions.
const (
	EnvLibraryDir  = "PHOTODNA_LIBRARY_DIR"
	EnvLibraryPath = "PHOTODNA_LIBRARY_PATH"
	EnvMaxThreads  = "PHOTODNA_MAX_THREADS"
)

// LoadGeneratorOptions builds GeneratorOptions from the environment. Unset or malformed
// values fall back to the defaults.
func LoadGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		MaxThreads:  max(core.ParseIntEnv(EnvMaxThreads, DefaultMaxThreads), 1),
		LibraryDir:  core.GetEnvOrDefault(EnvLibraryDir, ""),
		LibraryPath: core.GetEnvOrDefault(EnvLibraryPath, ""),
	}
}
