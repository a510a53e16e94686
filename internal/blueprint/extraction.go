package blueprint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoExtractions is returned when no extraction directory can be located.
var ErrNoExtractions = errors.New("no extraction directory found")

// LatestExtraction returns the greatest-named subdirectory of root.
// Extractions are named by timestamp, so the greatest name is the newest.
//
// Postcondition: returns an existing directory path, or an error wrapping
// ErrNoExtractions when root is missing or has no subdirectories.
func LatestExtraction(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("%w: reading extractions root %s: %v", ErrNoExtractions, root, err)
	}

	latest := ""
	for _, e := range entries {
		if !isDir(root, e) {
			continue
		}
		if e.Name() > latest {
			latest = e.Name()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w: %s has no subdirectories", ErrNoExtractions, root)
	}
	return filepath.Join(root, latest), nil
}

// ResolveExtraction returns explicit when it is set, otherwise the latest
// extraction below root.
//
// Postcondition: returns an existing directory path or a non-nil error.
func ResolveExtraction(explicit, root string) (string, error) {
	if explicit == "" {
		return LatestExtraction(root)
	}
	info, err := os.Stat(explicit)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoExtractions, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrNoExtractions, explicit)
	}
	return explicit, nil
}

func isDir(root string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, e.Name()))
	return err == nil && info.IsDir()
}
