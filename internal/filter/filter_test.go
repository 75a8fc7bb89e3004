package filter

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

var root = filepath.Join(string(filepath.Separator), "src")

func TestEligible(t *testing.T) {
	f := New(root, "circuitpy-sync", nil)

	tests := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(root, "code.py"), true},
		{filepath.Join(root, "lib", "mets_game_graphics.py"), true},
		{filepath.Join(root, "images", "logo.bmp"), true},
		{filepath.Join(root, "settings.toml"), true},
		{filepath.Join(root, ".DS_Store"), false},
		{filepath.Join(root, "lib", ".code.py.swp"), false},
		{filepath.Join(root, ".env"), false},
		{filepath.Join(root, "code.py.tmp"), false},
		{filepath.Join(root, "lib", "download.tmp"), false},
		{filepath.Join(root, "circuitpy-sync"), false},
		{filepath.Join(root, "tools", "circuitpy-sync"), false},
		{filepath.Join(root, "circuitpy-sync.py"), true},
		{filepath.Join(root, "tmp"), true},
		{filepath.Join(root, "file.tmp.py"), true},
	}

	for _, test := range tests {
		if got := f.Eligible(test.path); got != test.expected {
			t.Errorf("Eligible(%s) = %v, expected %v", test.path, got, test.expected)
		}
	}
}

func TestEligibleEmptyScriptName(t *testing.T) {
	f := New(root, "", nil)

	if !f.Eligible(filepath.Join(root, "code.py")) {
		t.Error("code.py should be eligible when no script name is set")
	}
}

func TestEligibleIgnorePatterns(t *testing.T) {
	f := New(root, "sync.py", []string{"*.bak", "README.md", "test_*"})

	tests := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(root, "code.py"), true},
		{filepath.Join(root, "code.py.bak"), false},
		{filepath.Join(root, "lib", "font.bak"), false},
		{filepath.Join(root, "docs", "README.md"), false},
		{filepath.Join(root, "test_display.py"), false},
		{filepath.Join(root, "display_test.py"), true},
		{filepath.Join(root, "sync.py"), false},
	}

	for _, test := range tests {
		if got := f.Eligible(test.path); got != test.expected {
			t.Errorf("Eligible(%s) = %v, expected %v", test.path, got, test.expected)
		}
	}
}

func TestEligibleDirectoryPatterns(t *testing.T) {
	f := New(root, "", []string{"lib/*.bak", "build/"})

	tests := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(root, "lib", "old.bak"), false},
		{filepath.Join(root, "old.bak"), true},
		{filepath.Join(root, "lib", "font.py"), true},
		{filepath.Join(root, "build", "out.py"), false},
		{filepath.Join(root, "build", "nested", "out.py"), false},
		{filepath.Join(root, "builder.py"), true},
	}

	for _, test := range tests {
		if got := f.Eligible(test.path); got != test.expected {
			t.Errorf("Eligible(%s) = %v, expected %v", test.path, got, test.expected)
		}
	}
}

func TestEligibleRelativePaths(t *testing.T) {
	f := New(root, "", []string{"lib/*.bak"})

	if f.Eligible(filepath.Join("lib", "old.bak")) {
		t.Error("Relative paths should be matched as given")
	}
	if !f.Eligible("code.py") {
		t.Error("code.py should be eligible")
	}
}

func TestSkipDir(t *testing.T) {
	f := New(root, "", nil)

	tests := []struct {
		path     string
		expected bool
	}{
		{".git", true},
		{filepath.Join(root, ".vscode"), true},
		{"lib", false},
		{filepath.Join(root, "lib", "fonts"), false},
		{".", false},
		{"..", false},
		{"/", false},
	}

	for _, test := range tests {
		if got := f.SkipDir(test.path); got != test.expected {
			t.Errorf("SkipDir(%s) = %v, expected %v", test.path, got, test.expected)
		}
	}
}

func TestRegularFile(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "code.py")
	if err := os.WriteFile(file, []byte("main"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "lib"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.Symlink(file, filepath.Join(dir, "linked.py")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "lib"), filepath.Join(dir, "linked-dir")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "missing.py"), filepath.Join(dir, "dangling.py")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	expected := map[string]bool{
		"code.py":     true,
		"lib":         false,
		"linked.py":   true,
		"linked-dir":  false,
		"dangling.py": false,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}

	for _, entry := range entries {
		want, ok := expected[entry.Name()]
		if !ok {
			continue
		}
		if got := RegularFile(filepath.Join(dir, entry.Name()), fs.DirEntry(entry)); got != want {
			t.Errorf("RegularFile(%s) = %v, expected %v", entry.Name(), got, want)
		}
	}
}
