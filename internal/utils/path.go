package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver locates the compiled image and config files relative to the
// running binary, so development checkouts and installed deployments both
// work without flags.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	execDir := filepath.Dir(execPath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = "/tmp" // fallback
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  execDir,
		homeDir:        homeDir,
		configDir:      getConfigDir(homeDir),
	}

	log.Debugf("PathResolver initialized: exec=%s, execDir=%s, configDir=%s",
		execPath, execDir, pr.configDir)

	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "spellserve")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "spellserve")
		}
		return filepath.Join(homeDir, ".config", "spellserve")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "spellserve")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "spellserve")
	default:
		return filepath.Join(homeDir, ".spellserve")
	}
}

// ResolveImagePath finds the compiled image. An absolute or existing
// relative path wins; otherwise the executable directory is tried.
func (pr *PathResolver) ResolveImagePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	if FileExists(path) {
		return GetAbsolutePath(path), nil
	}
	candidate := filepath.Join(pr.executableDir, path)
	if FileExists(candidate) {
		return candidate, nil
	}
	// Report the plain path; the caller's open error names what was tried.
	return GetAbsolutePath(path), nil
}

// GetConfigPath returns the path for the named config file, creating the
// config directory when needed.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	if result := CheckDirStatus(pr.configDir); result.Writable {
		return filepath.Join(pr.configDir, filename), nil
	}
	execDir, err := GetExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(execDir, filename), nil
}
