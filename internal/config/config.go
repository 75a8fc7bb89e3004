package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"circuitpy-sync/pkg/models"
)

const (
	DefaultSourceDir = "."
	DefaultTargetDir = "/Volumes/CIRCUITPY"
)

// New returns the built-in configuration used when no config file is given.
func New() *models.Config {
	return &models.Config{
		SourceDir:  DefaultSourceDir,
		TargetDir:  DefaultTargetDir,
		ScriptName: filepath.Base(os.Args[0]),
		Ignore:     make([]string, 0),
		LogFile:    "",
		Debug:      false,
	}
}

// Load reads a JSON, YAML or TOML config. A missing file is created with defaults.
func Load(configPath string) (*models.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := New()
		if err := Save(cfg, configPath); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := New()
	if err := decode(models.DetectFormat(configPath), data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func Save(cfg *models.Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := encode(models.DetectFormat(configPath), cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that both roots are set and that neither contains the other,
// otherwise every copy would trigger another change notification.
func Validate(cfg *models.Config) error {
	if cfg.SourceDir == "" {
		return fmt.Errorf("source directory is not set")
	}
	if cfg.TargetDir == "" {
		return fmt.Errorf("target directory is not set")
	}

	source, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("failed to resolve source directory: %w", err)
	}
	target, err := filepath.Abs(cfg.TargetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve target directory: %w", err)
	}

	if within(source, target) || within(target, source) {
		return fmt.Errorf("source %s and target %s must not overlap", source, target)
	}

	// Ignore patterns are gitignore lines matched against source-relative paths.
	for _, pattern := range cfg.Ignore {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("invalid ignore pattern %q: empty", pattern)
		}
		for _, part := range strings.Split(filepath.ToSlash(pattern), "/") {
			if part == ".." {
				return fmt.Errorf("invalid ignore pattern %q: must stay inside the source directory", pattern)
			}
		}
	}

	return nil
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
