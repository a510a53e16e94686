// Package testutil provides fixtures for blueprint extraction trees and
// in-memory blueprint sources.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/catalog"
)

// Blueprint marshals v and parses it as a blueprint.
//
// Precondition: v must marshal to a JSON object.
// Postcondition: Returns a parsed Blueprint or fails the test.
func Blueprint(t testing.TB, v map[string]any) *blueprint.Blueprint {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	bp, err := blueprint.Parse("mem.jbp", data)
	require.NoError(t, err)
	return bp
}

// WriteTree writes each file below root, creating parent directories. Keys
// are slash-separated paths relative to root.
//
// Postcondition: every file exists with the given content, or the test fails.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// MemSource is a blueprint.Source serving pre-built blueprints keyed by
// category id.
type MemSource map[string][]*blueprint.Blueprint

var _ blueprint.Source = MemSource(nil)

// Load returns a copy of the blueprints registered for cat, so callers may
// reorder the result.
func (m MemSource) Load(cat catalog.Category) []*blueprint.Blueprint {
	return append([]*blueprint.Blueprint(nil), m[cat.ID]...)
}
