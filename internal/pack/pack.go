// Package pack writes a compiled manifest to disk in the format selected
// by the output path's suffix.
package pack

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/wayneeseguin/daggen/pkg/daggen"
)

const manifestEntryName = "pipeline.yaml"

// Write marshals manifest to YAML and packages it to path according to
// its suffix: .tar.gz/.tgz produce a gzip tarball with a single
// pipeline.yaml entry, .zip a single deflated entry, .yaml/.yml the raw
// document. Any other suffix is a fatal error.
func Write(manifest *daggen.Manifest, path string) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".tar.gz") || strings.HasSuffix(path, ".tgz"):
		return writeTarGz(path, data)
	case strings.HasSuffix(path, ".zip"):
		return writeZip(path, data)
	case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
		return os.WriteFile(path, data, 0o644)
	default:
		return daggen.NewUnsupportedPackageSuffixError(path)
	}
}

func writeTarGz(path string, data []byte) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	if err := tw.WriteHeader(&tar.Header{
		Name: manifestEntryName,
		Mode: 0o644,
		Size: int64(len(data)),
	}); err != nil {
		return fmt.Errorf("writing tar header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing tar entry: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func writeZip(path string, data []byte) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(manifestEntryName)
	if err != nil {
		return fmt.Errorf("creating zip entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip writer: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
