package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// PathResolver finds directories relative to the running binary, the working
// directory and the config directory.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver creates a resolver for the current executable. configDir
// may be empty.
func NewPathResolver(configDir string) (*PathResolver, error) {
	execDir, err := ExecutableDir()
	if err != nil {
		return nil, err
	}
	pr := &PathResolver{
		executableDir: execDir,
		configDir:     configDir,
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, configDir)
	return pr, nil
}

// GetCorpusDir resolves the directory holding corpus files, trying in order:
// 1. the path itself if absolute
// 2. relative to the working directory
// 3. relative to the executable directory
// 4. the same name under the config directory
// When nothing exists the path is returned unchanged.
func (pr *PathResolver) GetCorpusDir(path string) string {
	for _, candidate := range pr.candidates(path) {
		if isDirectory(candidate) {
			log.Debugf("Found corpus directory: %s", candidate)
			return candidate
		}
		log.Debugf("Corpus directory candidate not valid: %s", candidate)
	}
	return path
}

func (pr *PathResolver) candidates(path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	var out []string
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(cwd, path))
	}
	out = append(out, filepath.Join(pr.executableDir, path))
	if pr.configDir != "" {
		out = append(out, filepath.Join(pr.configDir, path))
	}
	return out
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
