package filter

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Filter decides which files under the source directory get mirrored.
type Filter struct {
	root       string
	scriptName string
	ignore     *ignore.GitIgnore
}

// New builds a filter for files under root. Ignore patterns use gitignore
// syntax and are matched against the path relative to root.
func New(root, scriptName string, patterns []string) *Filter {
	f := &Filter{
		root:       root,
		scriptName: scriptName,
	}
	if len(patterns) > 0 {
		f.ignore = ignore.CompileIgnoreLines(patterns...)
	}
	return f
}

// Eligible reports whether the file at path should be copied. Hidden files,
// *.tmp files and the sync tool itself are rejected by base name; the ignore
// patterns then see the root-relative path.
func (f *Filter) Eligible(path string) bool {
	name := filepath.Base(path)

	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, ".tmp") {
		return false
	}
	if f.scriptName != "" && name == f.scriptName {
		return false
	}

	if f.ignore != nil && f.ignore.MatchesPath(filepath.ToSlash(f.relative(path))) {
		return false
	}

	return true
}

func (f *Filter) relative(path string) string {
	if !filepath.IsAbs(path) || f.root == "" {
		return path
	}
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return rel
}

// SkipDir reports whether a directory and everything under it is left alone.
// Hidden directories are pruned whole, so a file like .git/config is never
// mirrored even though its own base name would pass Eligible.
func (f *Filter) SkipDir(path string) bool {
	name := filepath.Base(path)
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

// RegularFile reports whether a walked entry is a regular file, following
// symlinks to their target.
func RegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
