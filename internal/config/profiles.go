package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// profilesFile is where named profile overlays live. It is read relative
// to the current working directory, independently of the base config
// file's location.
const profilesFile = "profiles.toml"

// profileFile is the parsed shape of profiles.toml: a table per profile
// name, each an overlay of only the fields that profile overrides.
type profileFile struct {
	Profiles map[string]ProfileOverlay `toml:"profiles"`
}

// ProfileOverlay is a partial Config: nil/false-zero fields are left
// untouched by applyTo, only explicitly-set pointers override the base.
type ProfileOverlay struct {
	OutputFormat       *string `toml:"output_format"`
	ServiceAccountName *string `toml:"service_account_name"`
	ColorOutput        *bool   `toml:"color_output"`
	StrictMode         *bool   `toml:"strict_mode"`
}

func (o ProfileOverlay) applyTo(cfg *Config) {
	if o.OutputFormat != nil {
		cfg.OutputFormat = *o.OutputFormat
	}
	if o.ServiceAccountName != nil {
		cfg.ServiceAccountName = *o.ServiceAccountName
	}
	if o.ColorOutput != nil {
		cfg.ColorOutput = *o.ColorOutput
	}
	if o.StrictMode != nil {
		cfg.StrictMode = *o.StrictMode
	}
}

// loadProfileOverlay reads profilesFile and returns the named profile's
// overlay. A missing profiles file or unknown profile name is an error:
// unlike the base config, a profile the caller explicitly asked for by
// name must exist.
func loadProfileOverlay(name string) (ProfileOverlay, error) {
	data, err := os.ReadFile(profilesFile)
	if err != nil {
		return ProfileOverlay{}, fmt.Errorf("reading %s: %w", profilesFile, err)
	}

	var pf profileFile
	if _, err := toml.Decode(string(data), &pf); err != nil {
		return ProfileOverlay{}, fmt.Errorf("parsing %s: %w", profilesFile, err)
	}

	overlay, ok := pf.Profiles[name]
	if !ok {
		return ProfileOverlay{}, fmt.Errorf("no profile named %q in %s", name, profilesFile)
	}
	return overlay, nil
}

// ListProfiles returns every profile name declared in profilesFile.
func ListProfiles() ([]string, error) {
	data, err := os.ReadFile(profilesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", profilesFile, err)
	}

	var pf profileFile
	if _, err := toml.Decode(string(data), &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", profilesFile, err)
	}

	names := make([]string, 0, len(pf.Profiles))
	for name := range pf.Profiles {
		names = append(names, name)
	}
	return names, nil
}
