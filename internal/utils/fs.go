package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// DirStatus describes a config, corpus or results directory after StatDir
// has tried to make it usable. Err is set only when creating it failed.
type DirStatus struct {
	Exists   bool
	Writable bool
	Err      error
}

// FileExists reports whether anything exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates dir and its parents. The current directory needs nothing.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// AbsPath returns path made absolute, or path unchanged when that fails.
// An empty path stays empty so callers can tell "no file" apart.
func AbsPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// ExecutableDir returns the directory of the running binary with symlinks
// resolved, so installs linked into a bin dir still find their siblings.
func ExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return filepath.Dir(execPath), nil
}

// StatDir creates dir when missing and checks that files can be written to it.
func StatDir(dir string) DirStatus {
	if err := EnsureDir(dir); err != nil {
		log.Warnf("Cannot create directory %s: %v", dir, err)
		return DirStatus{Err: err}
	}
	return DirStatus{Exists: true, Writable: writable(dir)}
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".ngramserve-*")
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dir, err)
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
