package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type FileFormat string

const (
	FormatJSON FileFormat = "json"
	FormatYAML FileFormat = "yaml"
	FormatTOML FileFormat = "toml"
)

// Phase identifies which driver triggered a copy.
type Phase string

const (
	PhaseInitial Phase = "initial"
	PhaseWatch   Phase = "watch"
)

type Config struct {
	SourceDir  string   `json:"source_dir" yaml:"source_dir" toml:"source_dir"`
	TargetDir  string   `json:"target_dir" yaml:"target_dir" toml:"target_dir"`
	ScriptName string   `json:"script_name" yaml:"script_name" toml:"script_name"`
	Ignore     []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`
	LogFile    string   `json:"log_file" yaml:"log_file" toml:"log_file"`
	Debug      bool     `json:"debug" yaml:"debug" toml:"debug"`
}

// SyncTask is a single source file and where it lands on the device.
type SyncTask struct {
	SourcePath   string
	RelativePath string
	TargetPath   string
}

type SyncEvent struct {
	ID           string    `json:"id"`
	Phase        Phase     `json:"phase"`
	RelativePath string    `json:"relative_path"`
	Bytes        int64     `json:"bytes"`
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

// NewSyncTask derives the relative and target paths for a file under sourceDir.
func NewSyncTask(sourceDir, targetDir, path string) (SyncTask, error) {
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil {
		return SyncTask{}, fmt.Errorf("failed to relativize %s: %w", path, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return SyncTask{}, fmt.Errorf("path %s is not under %s", path, sourceDir)
	}

	return SyncTask{
		SourcePath:   path,
		RelativePath: rel,
		TargetPath:   filepath.Join(targetDir, rel),
	}, nil
}

func (f FileFormat) String() string {
	return string(f)
}

func DetectFormat(filepath string) FileFormat {
	switch {
	case strings.HasSuffix(filepath, ".yaml"), strings.HasSuffix(filepath, ".yml"):
		return FormatYAML
	case strings.HasSuffix(filepath, ".toml"):
		return FormatTOML
	default:
		return FormatJSON
	}
}
