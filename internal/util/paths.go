package util

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// XDGDir resolves the app directory under an XDG base variable such as
// XDG_DATA_HOME. When the variable is unset the path falls back to the home
// directory joined with fallback, or to the working directory without a home.
func XDGDir(env, app string, fallback ...string) string {
	if base := strings.TrimSpace(os.Getenv(env)); base != "" {
		return filepath.Join(os.ExpandEnv(base), app)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", app)
	}
	return filepath.Join(append(append([]string{home}, fallback...), app)...)
}

// DataDir holds the database.
func DataDir(app string) string {
	return XDGDir("XDG_DATA_HOME", app, ".local", "share")
}

// ReportsDir is where weekly PDFs land: <documents>/<app>/<subdir>.
func ReportsDir(app, subdir string) string {
	if dir := strings.TrimSpace(os.Getenv("XDG_DOCUMENTS_DIR")); dir != "" {
		return filepath.Join(os.ExpandEnv(dir), app, subdir)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", app, subdir)
	}
	docs := userDir(filepath.Join(home, ".config", "user-dirs.dirs"), "XDG_DOCUMENTS_DIR")
	if docs == "" {
		docs = filepath.Join(home, "Documents")
	}
	return filepath.Join(docs, app, subdir)
}

// EnsureDir creates dir and its parents with user-only permissions.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o700)
}

// userDir reads one KEY="value" entry from an xdg-user-dirs file.
func userDir(path, key string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		value, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), key+"=")
		if ok {
			return os.ExpandEnv(strings.Trim(value, `"`))
		}
	}
	return ""
}
