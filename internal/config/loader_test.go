package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewLoader(t *testing.T) {
	Convey("NewLoader returns a usable Loader", t, func() {
		l := NewLoader()
		So(l, ShouldNotBeNil)
		So(l.manager, ShouldNotBeNil)
	})
}

func TestLoaderResolveNoFile(t *testing.T) {
	Convey("Resolve with no config path returns defaults", t, func() {
		l := NewLoader()
		cfg, err := l.Resolve("", "")

		So(err, ShouldBeNil)
		So(cfg.OutputFormat, ShouldEqual, "yaml")
	})
}

func TestLoaderResolveProfile(t *testing.T) {
	Convey("Resolve applies a named profile overlay on top of the base file", t, func() {
		dir := t.TempDir()
		prevWD, _ := os.Getwd()
		So(os.Chdir(dir), ShouldBeNil)
		defer os.Chdir(prevWD)

		profiles := "[profiles.ci]\ncolor_output = false\nstrict_mode = true\n"
		So(os.WriteFile(filepath.Join(dir, profilesFile), []byte(profiles), 0o644), ShouldBeNil)

		l := NewLoader()
		cfg, err := l.Resolve("", "ci")

		So(err, ShouldBeNil)
		So(cfg.StrictMode, ShouldBeTrue)
		So(cfg.Profile, ShouldEqual, "ci")
	})
}

func TestLoaderResolveUnknownProfile(t *testing.T) {
	Convey("Resolve fails for a profile name that isn't declared", t, func() {
		dir := t.TempDir()
		prevWD, _ := os.Getwd()
		So(os.Chdir(dir), ShouldBeNil)
		defer os.Chdir(prevWD)

		l := NewLoader()
		_, err := l.Resolve("", "nonexistent")

		So(err, ShouldNotBeNil)
	})
}

func TestLoaderOverride(t *testing.T) {
	Convey("Override applies non-zero fields on top of the resolved config", t, func() {
		l := NewLoader()
		cfg, err := l.Override(Config{OutputFormat: "zip", StrictMode: true})

		So(err, ShouldBeNil)
		So(cfg.OutputFormat, ShouldEqual, "zip")
		So(cfg.StrictMode, ShouldBeTrue)
		So(cfg.ServiceAccountName, ShouldEqual, "pipeline-runner")
	})
}
