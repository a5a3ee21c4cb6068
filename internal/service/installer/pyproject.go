package installer

import (
	"strings"

	"github.com/BurntSushi/toml"
)

// fallbackDependencies mirrors the plugin's pinned requirements, used when
// pyproject.toml is absent or carries no dependency list.
var fallbackDependencies = []string{
	"pyqt6>=6.10.0",
	"requests>=2.31.0",
	"watchdog>=3.0.0",
}

// pyprojectFile is the subset of pyproject.toml the installer reads.
type pyprojectFile struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// readDependencies loads the dependency list from pyproject.toml, falling
// back to the pinned defaults when the file is unreadable or lists nothing.
func readDependencies(path string) []string {
	var parsed pyprojectFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return fallbackDependencies
	}

	if len(parsed.Project.Dependencies) == 0 {
		return fallbackDependencies
	}

	return parsed.Project.Dependencies
}

// distributionName strips version constraints and extras from a dependency
// spec, e.g. "pyqt6>=6.10.0" becomes "pyqt6".
func distributionName(dep string) string {
	dep = strings.TrimSpace(dep)
	if cut := strings.IndexAny(dep, "<>=!~;[ "); cut >= 0 {
		dep = dep[:cut]
	}

	return dep
}
