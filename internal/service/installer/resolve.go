package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

var (
	errUnsupportedPlatform = errors.New("platform is not supported")
	errNoProfileDirectory  = errors.New("profile directory is not set")
)

// resolveAppCandidates lists where DaVinci Resolve installs per platform.
func resolveAppCandidates(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/DaVinci Resolve/DaVinci Resolve.app",
			"/Applications/DaVinci Resolve Studio/DaVinci Resolve Studio.app",
		}
	case "windows":
		return []string{
			`C:\Program Files\Blackmagic Design\DaVinci Resolve\Resolve.exe`,
			`C:\Program Files\Blackmagic Design\DaVinci Resolve Studio\Resolve.exe`,
		}
	default:
		return nil
	}
}

// scriptsDir returns the Fusion Scripts/Utility directory plugins are placed
// under, for the requested platform and scope.
func scriptsDir(goos string, systemScope bool) (string, error) {
	switch goos {
	case "darwin":
		if systemScope {
			return "/Library/Application Support/Blackmagic Design/DaVinci Resolve/Fusion/Scripts/Utility", nil
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}

		return filepath.Join(home,
			"Library", "Application Support", "Blackmagic Design",
			"DaVinci Resolve", "Fusion", "Scripts", "Utility"), nil
	case "windows":
		if systemScope {
			base := os.Getenv("PROGRAMDATA")
			if base == "" {
				return "", fmt.Errorf("PROGRAMDATA: %w", errNoProfileDirectory)
			}

			return filepath.Join(base,
				"Blackmagic Design", "DaVinci Resolve",
				"Fusion", "Scripts", "Utility"), nil
		}

		base := os.Getenv("APPDATA")
		if base == "" {
			return "", fmt.Errorf("APPDATA: %w", errNoProfileDirectory)
		}

		return filepath.Join(base,
			"Blackmagic Design", "DaVinci Resolve", "Support",
			"Fusion", "Scripts", "Utility"), nil
	default:
		return "", fmt.Errorf("%s: %w", goos, errUnsupportedPlatform)
	}
}

// isResolveRunning scans the process table for a running DaVinci Resolve.
func isResolveRunning() (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	for _, process := range processList {
		name := strings.ToLower(process.Executable())
		if strings.HasPrefix(name, "resolve") || strings.HasPrefix(name, "davinci") {
			return true, nil
		}
	}

	return false, nil
}
