package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

const (
	AppDirName    = "stickynotes"
	DefaultDBFile = "stickynotes.db"
)

// DataDir returns the per-user data directory for the application:
// $XDG_DATA_HOME or ~/.local/share on unix, ~/Library/Application Support on
// macOS and %AppData% on windows.
func DataDir() (string, error) {
	return dataDirFor(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func dataDirFor(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	const op = "resolve data dir"
	switch goos {
	case "windows":
		if dir := getenv("AppData"); dir != "" {
			return filepath.Join(dir, AppDirName), nil
		}
	case "darwin":
		h, err := home()
		if err != nil {
			return "", apperr.New(apperr.KindIO, op, err)
		}
		return filepath.Join(h, "Library", "Application Support", AppDirName), nil
	default:
		if dir := getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, AppDirName), nil
		}
	}
	h, err := home()
	if err != nil {
		return "", apperr.New(apperr.KindIO, op, err)
	}
	return filepath.Join(h, ".local", "share", AppDirName), nil
}

// DefaultPath is the database file inside DataDir.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultDBFile), nil
}
