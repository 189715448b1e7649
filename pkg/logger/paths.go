/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformLogPaths returns fallback log paths in order of priority for the platform.
func PlatformLogPaths() []string {
	switch runtime.GOOS {
	case "darwin", "linux":
		return []string{
			stateLogPath(),         // user-local (e.g. ~/.local/state/metis/metis.log)
			"./metis.log",          // current working dir
			"/tmp/metis/metis.log", // ephemeral
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("LOCALAPPDATA"), "metis", "metis.log"),
			".\\metis.log",
		}
	default:
		return []string{"./metis.log"}
	}
}

// stateLogPath resolves the XDG state location for the log file.
func stateLogPath() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "metis", "metis.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/metis/metis.log"
	}
	return filepath.Join(home, ".local", "state", "metis", "metis.log")
}

// EnsureLogPermissions ensures the log directory and file exist with owner-only access.
func EnsureLogPermissions(logFilePath string) error {
	dir := filepath.Dir(logFilePath)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	} else {
		if err := os.Chmod(dir, 0700); err != nil {
			return err
		}
	}

	if _, err := os.Stat(logFilePath); os.IsNotExist(err) {
		file, err := os.Create(logFilePath)
		if err != nil {
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
	}

	return os.Chmod(logFilePath, 0600)
}
