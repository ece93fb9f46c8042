package config

import "fmt"

// Loader resolves the tool's configuration through the precedence chain
// the CLI needs: base file with environment variables applied over it
// (inside Manager.Load, only when that file exists), then an optional
// named profile overlay, then whatever flags the caller applies last via
// Loader.Override.
type Loader struct {
	manager *Manager
}

// NewLoader creates a Loader backed by a fresh Manager.
func NewLoader() *Loader {
	return &Loader{manager: NewManager()}
}

// Resolve loads configPath (if it exists), applies profileName's overlay
// (if non-empty), and returns the resulting Config.
func (l *Loader) Resolve(configPath, profileName string) (*Config, error) {
	if configPath != "" {
		if err := l.manager.Load(configPath); err != nil {
			return nil, fmt.Errorf("resolving config: %w", err)
		}
	}
	if profileName != "" {
		if err := l.manager.LoadProfile(profileName); err != nil {
			return nil, fmt.Errorf("resolving config: %w", err)
		}
	}
	return l.manager.Get(), nil
}

// Override applies CLI-flag overrides on top of whatever Resolve produced.
// Only non-zero fields in overrides are applied.
func (l *Loader) Override(overrides Config) (*Config, error) {
	var err error
	updateErr := l.manager.Update(func(cfg *Config) {
		if overrides.OutputFormat != "" {
			cfg.OutputFormat = overrides.OutputFormat
		}
		if overrides.ServiceAccountName != "" {
			cfg.ServiceAccountName = overrides.ServiceAccountName
		}
		if overrides.ColorOutput {
			cfg.ColorOutput = true
		}
		if overrides.StrictMode {
			cfg.StrictMode = true
		}
	})
	if updateErr != nil {
		err = fmt.Errorf("applying overrides: %w", updateErr)
	}
	return l.manager.Get(), err
}
