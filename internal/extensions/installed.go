package extensions

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// LoadInstalled reads a manifest of installed extensions. The manifest is a
// YAML or JSON list of Installed records.
func LoadInstalled(path string) ([]Installed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read installed manifest: %w", err)
	}
	return ParseInstalled(data)
}

// ParseInstalled decodes a manifest of installed extensions
func ParseInstalled(data []byte) ([]Installed, error) {
	var installed []Installed
	if err := yaml.UnmarshalStrict(data, &installed); err != nil {
		return nil, fmt.Errorf("failed to parse installed manifest: %w", err)
	}

	return NormalizeInstalled(installed)
}

// NormalizeInstalled checks installed records and derives LibVersion from
// VersionName where it is missing. The returned slice is never nil.
func NormalizeInstalled(installed []Installed) ([]Installed, error) {
	for i, ext := range installed {
		if ext.PkgName == "" {
			return nil, fmt.Errorf("installed extension %d: pkgName is required", i)
		}
		if ext.LibVersion == 0 && ext.VersionName != "" {
			lib, err := LibVersion(ext.VersionName)
			if err != nil {
				return nil, fmt.Errorf("installed extension %s: %w", ext.PkgName, err)
			}
			installed[i].LibVersion = lib
		}
	}
	if installed == nil {
		installed = []Installed{}
	}
	return installed, nil
}
