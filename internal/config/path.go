package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies CLI/XDG/home fallback rules for config.toml location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "pcpaneld", "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "pcpaneld", "config.toml"), nil
}

// ConfigDir returns the directory containing the resolved config file,
// the directory the hot-reload watcher watches.
func ConfigDir(explicit string) (string, error) {
	path, err := ResolvePath(explicit)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}
