// Package config provides the compiler tool's configuration system, as
// opposed to a single pipeline's daggen.PipelineConfig.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Config represents the complete tool configuration
type Config struct {
	// OutputFormat is the packaging suffix the CLI appends to the
	// pipeline name when the -o flag is omitted.
	OutputFormat string `toml:"output_format" default:"yaml"`

	// ServiceAccountName is stamped onto spec.serviceAccountName for
	// every compiled manifest whose pipeline config names none.
	ServiceAccountName string `toml:"service_account_name" default:"pipeline-runner"`

	// ColorOutput is parsed, overlaid, and overridable like the other
	// fields, but the CLI does not read it: color output is decided by
	// the --color flag alone.
	ColorOutput bool `toml:"color_output" default:"false"`

	// StrictMode turns the volume-dedup conflict warning into a fatal
	// error: the CLI's compile verb fails when any warning was raised.
	StrictMode bool `toml:"strict_mode" default:"false"`

	// Profile names the active profile, set by LoadProfile rather than
	// read from the file itself.
	Profile string `toml:"-"`
}

// Manager manages configuration loading and validation, and notifies
// registered hooks whenever a file, profile, or update is installed.
type Manager struct {
	config      *Config
	configPath  string
	mu          sync.RWMutex
	changeHooks []func(*Config)
}

// NewManager creates a new configuration manager seeded with DefaultConfig.
func NewManager() *Manager {
	return &Manager{
		config:      DefaultConfig(),
		changeHooks: make([]func(*Config), 0),
	}
}

// DefaultConfig returns the baseline configuration used when no file is
// found and no profile is selected.
func DefaultConfig() *Config {
	return &Config{
		OutputFormat:       "yaml",
		ServiceAccountName: "pipeline-runner",
		ColorOutput:        false,
		StrictMode:         false,
		Profile:            "default",
	}
}

// Load reads path as TOML into a fresh Config, applies environment
// overrides, validates it, and makes it the manager's current config.
// A missing file is not an error: DefaultConfig is installed as is,
// without environment overrides and without notifying change hooks.
func (m *Manager) Load(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expandedPath, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expanding config path: %w", err)
	}

	config := DefaultConfig()

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			m.config = config
			m.configPath = expandedPath
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	m.config = config
	m.configPath = expandedPath
	m.notifyChangeHooks(config)
	return nil
}

// LoadProfile loads a named profile's overlay file and applies it on top
// of the base config already loaded (or DefaultConfig, if none was).
func (m *Manager) LoadProfile(profileName string) error {
	overlay, err := loadProfileOverlay(profileName)
	if err != nil {
		return fmt.Errorf("loading profile %s: %w", profileName, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	merged := *m.config
	overlay.applyTo(&merged)
	merged.Profile = profileName

	if err := Validate(&merged); err != nil {
		return fmt.Errorf("validating profile %s: %w", profileName, err)
	}

	m.config = &merged
	m.notifyChangeHooks(&merged)
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	configCopy := *m.config
	return &configCopy
}

// Update applies updateFunc to a copy of the current configuration,
// validates it, and, if valid, makes it current.
func (m *Manager) Update(updateFunc func(*Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	configCopy := *m.config
	updateFunc(&configCopy)

	if err := Validate(&configCopy); err != nil {
		return fmt.Errorf("validating updated configuration: %w", err)
	}

	m.config = &configCopy
	m.notifyChangeHooks(&configCopy)
	return nil
}

// OnChange registers a callback invoked (synchronously) whenever Load
// (from an existing file), LoadProfile, or Update install a new
// configuration.
func (m *Manager) OnChange(hook func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeHooks = append(m.changeHooks, hook)
}

func (m *Manager) notifyChangeHooks(config *Config) {
	for _, hook := range m.changeHooks {
		hook(config)
	}
}

// expandPath expands ~ and environment variables in paths.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

// applyEnvOverrides lets DAGGEN_OUTPUT_FORMAT, DAGGEN_SERVICE_ACCOUNT, and
// DAGGEN_COLOR override whatever the file set, matching the corpus's
// env-tag override convention without the full reflective walk (this
// config has no nested structs left to walk).
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DAGGEN_OUTPUT_FORMAT"); v != "" {
		config.OutputFormat = v
	}
	if v := os.Getenv("DAGGEN_SERVICE_ACCOUNT"); v != "" {
		config.ServiceAccountName = v
	}
	if v := os.Getenv("DAGGEN_COLOR"); v != "" {
		config.ColorOutput = v == "true" || v == "1"
	}
}
