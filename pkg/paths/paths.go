// Package paths provides centralized path handling for mothball.
// It implements XDG Base Directory specification compliance and keeps
// the rules file search order in one place.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/mothball/pkg/errors"
)

// Environment variable names
const (
	// EnvRulesFile points at the rules file to use, overriding the
	// search order below
	EnvRulesFile = "MOTHBALL_RULES"

	// EnvConfigDir overrides the XDG config directory for mothball
	EnvConfigDir = "MOTHBALL_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for mothball
	EnvDataDir = "MOTHBALL_DATA_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for mothball-specific files
	AppDirName = "mothball"

	// RulesFileName is the rules file name inside the config directory
	RulesFileName = "rules.toml"

	// ArchiveFileName is the default SQLite archive database name
	ArchiveFileName = "archive.db"
)

// ConfigDir returns the mothball configuration directory
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// DataDir returns the mothball data directory
func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}

// DefaultRulesPath returns the rules file location inside the
// configuration directory
func DefaultRulesPath() string {
	return filepath.Join(ConfigDir(), RulesFileName)
}

// DefaultArchivePath returns the default SQLite archive location
func DefaultArchivePath() string {
	return filepath.Join(DataDir(), ArchiveFileName)
}

// RulesCandidates returns the locations probed for a rules file, in
// search order: the working directory first, the config directory
// last
func RulesCandidates() []string {
	return []string{
		"mothball.toml",
		"mothball.yaml",
		".mothball.toml",
		".mothball.yaml",
		filepath.Join(ConfigDir(), "rules.toml"),
		filepath.Join(ConfigDir(), "rules.yaml"),
	}
}

// FindRulesFile resolves the rules file to use. An explicit path or a
// path set through MOTHBALL_RULES must exist; otherwise the candidate
// locations are probed in order.
func FindRulesFile(explicit string) (string, error) {
	if explicit != "" {
		return requireFile(expandHome(explicit))
	}
	if env := os.Getenv(EnvRulesFile); env != "" {
		return requireFile(expandHome(env))
	}

	for _, path := range RulesCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", errors.Newf(errors.ErrRulesLoad,
		"no rules file found (looked for %s); run \"mothball init\" to create one",
		strings.Join(RulesCandidates(), ", "))
}

func requireFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrapf(err, errors.ErrRulesLoad, "rules file %s", path)
	}
	return path, nil
}

// expandHome expands a leading ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
