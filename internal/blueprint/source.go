package blueprint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rtdb/internal/catalog"
)

// Source loads the blueprints belonging to one category.
//
// Postcondition: returns the successfully parsed blueprints, possibly none.
// Unreadable files and missing directories are reported, never returned as
// errors, so one bad category cannot block its siblings.
type Source interface {
	Load(cat catalog.Category) []*Blueprint
}

var _ Source = (*DirSource)(nil)

// DirSource implements Source for an extraction tree on disk:
//
//	root/
//	  <category path>/   <- one blueprint file per item, non-recursive
type DirSource struct {
	root   string
	ext    string
	logger *zap.Logger
}

// NewDirSource constructs a DirSource reading files with suffix ext below root.
//
// Precondition: logger must be non-nil; ext includes the leading dot.
func NewDirSource(root, ext string, logger *zap.Logger) *DirSource {
	return &DirSource{root: root, ext: ext, logger: logger}
}

// Root returns the extraction directory the source reads from.
func (s *DirSource) Root() string { return s.root }

// Load reads every blueprint file directly under the category's directory.
// Order follows the directory listing; callers sort where it matters.
func (s *DirSource) Load(cat catalog.Category) []*Blueprint {
	dir := filepath.Join(s.root, filepath.FromSlash(cat.Path))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("category directory does not exist",
				zap.String("category", cat.ID),
				zap.String("path", dir),
			)
		} else {
			s.logger.Warn("reading category directory",
				zap.String("category", cat.ID),
				zap.String("path", dir),
				zap.Error(err),
			)
		}
		return nil
	}

	var out []*Blueprint
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != s.ext {
			continue
		}
		path := filepath.Join(dir, e.Name())
		bp, err := loadFile(path)
		if err != nil {
			s.logger.Warn("skipping blueprint",
				zap.String("category", cat.ID),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		out = append(out, bp)
	}
	return out
}

func loadFile(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blueprint file: %w", err)
	}
	return Parse(path, data)
}
