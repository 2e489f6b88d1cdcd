package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "coachtui"

// GetConfigDir returns the platform-specific configuration directory
// Linux/Mac: ~/.config/coachtui
// Windows: C:\Users\username\.config\coachtui
func GetConfigDir() string {
	return filepath.Join(GetHomeDir(), ".config", appDirName)
}

// GetDefaultDataDir returns the platform-specific default data directory
// Linux/Mac: ~/.local/share/coachtui
// Windows: C:\Users\username\AppData\Local\coachtui
func GetDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(localAppData(), appDirName)
	}
	return filepath.Join(GetHomeDir(), ".local", "share", appDirName)
}

// GetCacheDir returns the platform-specific cache directory.
// Session scoped files (presence database) live below it and are removed on exit.
func GetCacheDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(localAppData(), appDirName, "cache")
	}
	return filepath.Join(GetHomeDir(), ".cache", appDirName)
}

func localAppData() string {
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
}

func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetHomeDir falls back to "/" when no home directory can be determined.
func GetHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return string(filepath.Separator)
}

// ExpandPath resolves a leading ~/ and $VARS, then cleans the result.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		path = filepath.Join(GetHomeDir(), rest)
	}
	return filepath.Clean(os.ExpandEnv(path))
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDirPermissions creates dataDir or tightens it to 0700.
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	switch {
	case os.IsNotExist(err):
		return EnsureDir(dataDir)
	case err != nil:
		return err
	case info.Mode().Perm() != 0700:
		return os.Chmod(dataDir, 0700)
	}
	return nil
}

// GetTempDir returns the per-run directory. It never lives in the data
// directory so nothing session scoped gets synced or backed up.
func GetTempDir() string {
	return filepath.Join(GetCacheDir(), "tmp")
}

// GetPresenceDBPath returns the session scoped presence database path.
func GetPresenceDBPath() string {
	return filepath.Join(GetTempDir(), "presence.db")
}

// CleanupTempDir removes everything left by this or a crashed earlier run.
func CleanupTempDir() error {
	return os.RemoveAll(GetTempDir())
}

func CreateTempDir() error {
	return EnsureDir(GetTempDir())
}
