// Package paths provides sudo-aware path resolution for Stellar.
//
// When running with sudo, these functions resolve to the original user's
// directories (via SUDO_USER) instead of root's.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// AppName names the per-user config directory.
const AppName = "stellar"

// UserHomeDir returns the home directory of the actual user.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// UserConfigDir returns ~/.config for the actual user. XDG_CONFIG_HOME wins when set
// and we are not running under sudo.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && os.Getenv("SUDO_USER") == "" {
		return xdg, nil
	}
	homeDir, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config"), nil
}

// AppDir returns ~/.config/stellar.
func AppDir() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

func inAppDir(parts ...string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, parts...)...), nil
}

// ConfigPath returns ~/.config/stellar/config.toml.
func ConfigPath() (string, error) { return inAppDir("config.toml") }

// DatabasePath returns ~/.config/stellar/history.db.
func DatabasePath() (string, error) { return inAppDir("history.db") }

// LogPath returns ~/.config/stellar/logs/stellar.log.
func LogPath() (string, error) { return inAppDir("logs", "stellar.log") }

// ActivityDir returns the directory holding the JSONL rename audit files.
func ActivityDir() (string, error) { return inAppDir("activity") }

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
