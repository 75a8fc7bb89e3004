package models

import (
	"path/filepath"
	"testing"
)

func TestFileFormatString(t *testing.T) {
	tests := []struct {
		format   FileFormat
		expected string
	}{
		{FormatJSON, "json"},
		{FormatYAML, "yaml"},
		{FormatTOML, "toml"},
	}

	for _, test := range tests {
		if test.format.String() != test.expected {
			t.Errorf("FileFormat.String() = %s, expected %s", test.format.String(), test.expected)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filepath string
		expected FileFormat
	}{
		{"config.json", FormatJSON},
		{"config.yaml", FormatYAML},
		{"config.yml", FormatYAML},
		{"config.toml", FormatTOML},
		{"config.txt", FormatJSON}, // default
		{"config", FormatJSON},     // default
		{"/path/to/config.yaml", FormatYAML},
		{"", FormatJSON},
		{"file.YAML", FormatJSON}, // case sensitive
	}

	for _, test := range tests {
		result := DetectFormat(test.filepath)
		if result != test.expected {
			t.Errorf("DetectFormat(%s) = %s, expected %s", test.filepath, result, test.expected)
		}
	}
}

func TestNewSyncTask(t *testing.T) {
	source := filepath.Join("/home", "dev", "embedded")
	target := filepath.Join("/Volumes", "CIRCUITPY")

	tests := []struct {
		name        string
		path        string
		expectedRel string
		expectedTgt string
	}{
		{
			name:        "top level file",
			path:        filepath.Join(source, "code.py"),
			expectedRel: "code.py",
			expectedTgt: filepath.Join(target, "code.py"),
		},
		{
			name:        "nested file",
			path:        filepath.Join(source, "lib", "graphics", "sprite.py"),
			expectedRel: filepath.Join("lib", "graphics", "sprite.py"),
			expectedTgt: filepath.Join(target, "lib", "graphics", "sprite.py"),
		},
		{
			name:        "file name starting with dots",
			path:        filepath.Join(source, "..notes"),
			expectedRel: "..notes",
			expectedTgt: filepath.Join(target, "..notes"),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			task, err := NewSyncTask(source, target, test.path)
			if err != nil {
				t.Fatalf("NewSyncTask() returned error: %v", err)
			}
			if task.SourcePath != test.path {
				t.Errorf("Expected source path %s, got %s", test.path, task.SourcePath)
			}
			if task.RelativePath != test.expectedRel {
				t.Errorf("Expected relative path %s, got %s", test.expectedRel, task.RelativePath)
			}
			if task.TargetPath != test.expectedTgt {
				t.Errorf("Expected target path %s, got %s", test.expectedTgt, task.TargetPath)
			}
		})
	}
}

func TestNewSyncTaskOutsideSource(t *testing.T) {
	source := filepath.Join("/home", "dev", "embedded")
	target := filepath.Join("/Volumes", "CIRCUITPY")

	paths := []string{
		source,
		filepath.Join("/home", "dev", "other", "code.py"),
		filepath.Join("/home", "dev"),
	}

	for _, path := range paths {
		if _, err := NewSyncTask(source, target, path); err == nil {
			t.Errorf("NewSyncTask(%s) should return error", path)
		}
	}
}
