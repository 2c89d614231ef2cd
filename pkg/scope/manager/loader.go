package manager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"tessera-hq/meridian/pkg/scope"
	"tessera-hq/meridian/pkg/scope/parser"
)

// ScopeLoader handles loading scopes from the file system.
// It supports single files and directory structures with validation.
type ScopeLoader struct {
	config *ScopeLoaderConfig
	parser *parser.Parser
}

// NewScopeLoader creates a new scope loader with the given configuration.
func NewScopeLoader(config *ScopeLoaderConfig, parser *parser.Parser) *ScopeLoader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &ScopeLoader{
		config: config,
		parser: parser,
	}
}

// LoadFromFile loads a single scope file from the given path.
// It performs file size validation, UTF-8 validation, and YAML parsing.
func (l *ScopeLoader) LoadFromFile(path string) (*scope.Scope, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "file not found",
				Cause:    err,
			}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "permission denied",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to access file",
			Cause:    err,
		}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{
			FilePath: path,
			Message:  "not a regular file",
		}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to read file",
			Cause:    err,
		}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{
			FilePath: path,
			Message:  "file contains invalid UTF-8 encoding",
		}
	}

	s, err := l.parser.ParseBytes(data, path)
	if err != nil {
		return nil, &ParseError{
			FilePath: path,
			Message:  "YAML parsing failed",
			Cause:    err,
		}
	}

	return s, nil
}

// LoadFromDirectory loads all scope files from the given directory recursively.
// It returns a list of successfully loaded scopes and any errors encountered.
func (l *ScopeLoader) LoadFromDirectory(dir string) ([]*scope.Scope, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: dir,
				Message:  "directory not found",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to access directory",
			Cause:    err,
		}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "not a directory",
		}
	}

	scopeFiles, err := l.collectScopeFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(scopeFiles) == 0 {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "no scope files found in directory",
		}
	}

	var scopes []*scope.Scope
	errList := &ErrorList{}

	for _, filePath := range scopeFiles {
		s, err := l.LoadFromFile(filePath)
		if err != nil {
			errList.Add(err)
			continue
		}
		scopes = append(scopes, s)
	}

	// Return error if all files failed to load
	if len(scopes) == 0 && errList.HasErrors() {
		return nil, errList
	}

	// Return scopes with partial errors
	if errList.HasErrors() {
		return scopes, errList
	}

	return scopes, nil
}

// collectScopeFiles collects all scope file paths in the given directory.
// It filters by extension and skips hidden files based on configuration.
func (l *ScopeLoader) collectScopeFiles(dir string) ([]string, error) {
	var scopeFiles []string
	visited := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}

			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return &LoadError{
					FilePath: path,
					Message:  "failed to resolve symlink",
					Cause:    err,
				}
			}

			if visited[realPath] {
				return &LoadError{
					FilePath: path,
					Message:  "symlink loop detected",
				}
			}
			visited[realPath] = true

			if !l.hasValidExtension(realPath) {
				return nil
			}

			scopeFiles = append(scopeFiles, path)
			return nil
		}

		if !l.hasValidExtension(path) {
			return nil
		}

		scopeFiles = append(scopeFiles, path)
		return nil
	})

	if err != nil {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to walk directory",
			Cause:    err,
		}
	}

	return scopeFiles, nil
}

// hasValidExtension checks if the file has a valid scope file extension.
func (l *ScopeLoader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// IsDirectory checks if the given path is a directory.
func (l *ScopeLoader) IsDirectory(path string) (bool, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &LoadError{
				FilePath: path,
				Message:  "path does not exist",
				Cause:    err,
			}
		}
		return false, &LoadError{
			FilePath: path,
			Message:  "failed to access path",
			Cause:    err,
		}
	}

	return fileInfo.IsDir(), nil
}
