// Package batch expands command line page arguments into snapshot files.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultIncludePatterns select page snapshots inside directories.
var DefaultIncludePatterns = []string{"*.yaml", "*.yml"}

// Discovery controls how directories given as page arguments are searched.
type Discovery struct {
	Recursive bool
	// Include and Exclude match file base names inside directories. Files
	// named directly are always kept.
	Include []string
	Exclude []string
}

// Discover returns the page files named by args in argument order. Each
// directory contributes its matching files in lexical order.
func (d Discovery) Discover(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := d.discoverInDirectory(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no page files found in %s", arg)
		}
		files = append(files, found...)
	}
	return files, nil
}

func (d Discovery) discoverInDirectory(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if !d.Recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.shouldInclude(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", dir, err)
	}
	return files, nil
}

// shouldInclude applies exclude patterns first, then include patterns.
func (d Discovery) shouldInclude(path string) bool {
	if matchesAnyPattern(path, d.Exclude) {
		return false
	}
	include := d.Include
	if len(include) == 0 {
		include = DefaultIncludePatterns
	}
	return matchesAnyPattern(path, include)
}

func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
