package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "reqtrace.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/reqtrace"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// ErrConfigExists is returned by InitProject when the file already exists.
var ErrConfigExists = errors.New("config file already exists")

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	homeDir string
	workDir string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{logger: logger}
	if home, err := os.UserHomeDir(); err == nil {
		l.homeDir = home
	}
	if cwd, err := os.Getwd(); err == nil {
		l.workDir = cwd
	}
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/reqtrace/config.yaml)
// 3. explicit, when non-empty; otherwise reqtrace.yaml in the working
// directory or its nearest parent
//
// The merged result is validated.
func (l *Loader) Load(explicit string) (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	projectConfigPath := explicit
	if projectConfigPath == "" {
		projectConfigPath = l.findProjectConfig()
	}
	if projectConfigPath != "" {
		projectConfig, err := LoadFromFile(projectConfigPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
		config.Merge(projectConfig)
	} else {
		l.logger.Debug("No project config found")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// InitProject writes a starter reqtrace.yaml into dir.
func (l *Loader) InitProject(dir string) (string, error) {
	path := filepath.Join(dir, ProjectConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if err := Starter().SaveToFile(path); err != nil {
		return path, err
	}

	l.logger.Info("Created project config", slog.String("path", path))
	return path, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	if l.homeDir == "" {
		return ""
	}
	return filepath.Join(l.homeDir, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for reqtrace.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	if l.workDir == "" {
		return ""
	}

	dir := l.workDir
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
