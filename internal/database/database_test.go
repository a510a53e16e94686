package database_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/catalog"
	"github.com/cory-johannsen/rtdb/internal/config"
	"github.com/cory-johannsen/rtdb/internal/database"
	"github.com/cory-johannsen/rtdb/internal/testutil"
)

const weaponTag = "Kingmaker.Blueprints.Items.Weapons.BlueprintItemWeapon"

func testTable() catalog.Table {
	return catalog.Table{
		All: catalog.Meta{Title: "All Items", Icon: "📦"},
		Categories: []catalog.Category{
			{ID: "weapons", Title: "Weapons", Icon: "⚔️", Path: "Weapons"},
			{ID: "rings", Title: "Rings", Icon: "💍", Path: "Rings"},
		},
	}
}

func defaultPackageConfig() config.PackageConfig {
	return config.PackageConfig{Brotli: true, GzipLevel: 9, BrotliQuality: 11}
}

// decodedDoc mirrors the published JSON with loosely typed items.
type decodedDoc struct {
	Items      []map[string]any        `json:"items"`
	Counts     map[string]int          `json:"counts"`
	Categories map[string]catalog.Meta `json:"categories"`
}

func TestBuild_FiltersSortsAndCounts(t *testing.T) {
	src := testutil.MemSource{
		"weapons": {
			testutil.Blueprint(t, map[string]any{"$type": weaponTag, "guid": "w1", "name": "bolter", "data": map[string]any{"WarhammerDamage": 5}}),
			testutil.Blueprint(t, map[string]any{"$type": weaponTag, "guid": "w2", "name": "Template", "data": map[string]any{}}),
			testutil.Blueprint(t, map[string]any{"$type": weaponTag, "guid": "w3", "name": "Fist", "data": map[string]any{"IsMelee": true}}),
		},
		"rings": {
			testutil.Blueprint(t, map[string]any{"guid": "r1", "name": "Amber Ring"}),
			testutil.Blueprint(t, map[string]any{"guid": "r2"}),
		},
	}

	doc := database.Build(src, testTable(), zap.NewNop())

	var names []string
	for _, it := range doc.Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Amber Ring", "bolter", "Fist"}, names, "sorted case-insensitively")
	assert.Equal(t, map[string]int{"weapons": 2, "rings": 1, "all": 3}, doc.Counts)
	assert.Equal(t, "All Items", doc.Categories[catalog.AllID].Title)
	assert.Len(t, doc.Categories, 3)
}

func TestBuild_EmptySourceYieldsZeroCounts(t *testing.T) {
	doc := database.Build(testutil.MemSource{}, testTable(), zap.NewNop())

	data, err := doc.Encode()
	require.NoError(t, err)

	var got decodedDoc
	require.NoError(t, json.Unmarshal(data, &got))
	assert.NotNil(t, got.Items, "items must encode as [] rather than null")
	assert.Empty(t, got.Items)
	assert.Equal(t, map[string]int{"weapons": 0, "rings": 0, "all": 0}, got.Counts)
}

func TestEncode_MinifiedWithoutHTMLEscapes(t *testing.T) {
	src := testutil.MemSource{"rings": {testutil.Blueprint(t, map[string]any{"name": "Ring", "data": map[string]any{"Description": "<b>bold</b> & more"}})}}
	data, err := database.Build(src, testTable(), zap.NewNop()).Encode()
	require.NoError(t, err)

	assert.NotContains(t, string(data), "\n")
	assert.NotContains(t, string(data), ": ")
	assert.Contains(t, string(data), "<b>bold</b> & more")
}

func TestPackager_Run_WritesAllVariants(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"Weapons/bolter.jbp": `{
			"$type": "` + weaponTag + `",
			"guid": "w1",
			"name": "Bolter",
			"data": {"IsRanged": true, "WarhammerDamage": 10, "WarhammerMaxDamage": 15}
		}`,
	})
	outDir := filepath.Join(t.TempDir(), "site")

	src := blueprint.NewDirSource(root, ".jbp", zap.NewNop())
	report, err := database.New(src, testTable(), defaultPackageConfig(), zap.NewNop()).Run(outDir)
	require.NoError(t, err)
	require.Len(t, report.Files, 3)
	assert.Equal(t, 1, report.Items)

	plain, err := os.ReadFile(filepath.Join(outDir, database.JSONFile))
	require.NoError(t, err)

	gz, err := os.ReadFile(filepath.Join(outDir, database.GzipFile))
	require.NoError(t, err)
	gr, err := gzip.NewReader(bytes.NewReader(gz))
	require.NoError(t, err)
	fromGzip, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, plain, fromGzip)

	br, err := os.ReadFile(filepath.Join(outDir, database.BrotliFile))
	require.NoError(t, err)
	fromBrotli, err := io.ReadAll(brotli.NewReader(bytes.NewReader(br)))
	require.NoError(t, err)
	assert.Equal(t, plain, fromBrotli)

	var doc decodedDoc
	require.NoError(t, json.Unmarshal(plain, &doc))
	require.Len(t, doc.Items, 1)
	got := doc.Items[0]
	assert.Equal(t, 10.0, got["damageMin"])
	assert.Equal(t, 15.0, got["damageMax"])
	assert.Equal(t, true, got["isRanged"])
	assert.NotContains(t, got, "isMelee")
	assert.Equal(t, "weapons", got["category"])
	assert.Equal(t, "Common", got["rarity"])
}

func TestPackager_Run_BrotliDisabled(t *testing.T) {
	outDir := t.TempDir()
	cfg := defaultPackageConfig()
	cfg.Brotli = false

	report, err := database.New(testutil.MemSource{}, testTable(), cfg, zap.NewNop()).Run(outDir)
	require.NoError(t, err)
	assert.Len(t, report.Files, 2)

	_, err = os.Stat(filepath.Join(outDir, database.BrotliFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outDir, database.GzipFile))
	assert.NoError(t, err)
}

func TestPackager_Run_MissingCategoryDirectories(t *testing.T) {
	outDir := t.TempDir()
	src := blueprint.NewDirSource(t.TempDir(), ".jbp", zap.NewNop())

	report, err := database.New(src, testTable(), defaultPackageConfig(), zap.NewNop()).Run(outDir)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Items)
	assert.Equal(t, 0, report.Counts["weapons"])
}

func TestPackager_Run_UnwritableOutput(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := database.New(testutil.MemSource{}, testTable(), defaultPackageConfig(), zap.NewNop()).Run(filepath.Join(blocker, "out"))
	assert.Error(t, err)
}

func TestGzipAndBrotli_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(rt, "data")

		gz, err := database.Gzip(data, 9)
		require.NoError(rt, err)
		gr, err := gzip.NewReader(bytes.NewReader(gz))
		require.NoError(rt, err)
		back, err := io.ReadAll(gr)
		require.NoError(rt, err)
		assert.True(rt, bytes.Equal(data, back))

		br, err := database.Brotli(data, 11)
		require.NoError(rt, err)
		back, err = io.ReadAll(brotli.NewReader(bytes.NewReader(br)))
		require.NoError(rt, err)
		assert.True(rt, bytes.Equal(data, back))
	})
}

// TestPackager_CountsMatchItems is a property-based test verifying that the
// published counts agree with the published items after a JSON round trip.
func TestPackager_CountsMatchItems(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := testutil.MemSource{}
		for _, cat := range []string{"weapons", "rings"} {
			n := rapid.IntRange(0, 6).Draw(rt, cat)
			for i := 0; i < n; i++ {
				named := rapid.Bool().Draw(rt, fmt.Sprintf("%s_%d_named", cat, i))
				dmg := rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("%s_%d_dmg", cat, i))
				v := map[string]any{
					"$type": weaponTag,
					"guid":  fmt.Sprintf("%s-%d", cat, i),
					"data":  map[string]any{"WarhammerDamage": dmg},
				}
				if named {
					v["name"] = fmt.Sprintf("Item %d", i)
				}
				src[cat] = append(src[cat], testutil.Blueprint(t, v))
			}
		}

		outDir := t.TempDir()
		_, err := database.New(src, testTable(), defaultPackageConfig(), zap.NewNop()).Run(outDir)
		require.NoError(rt, err)

		plain, err := os.ReadFile(filepath.Join(outDir, database.JSONFile))
		require.NoError(rt, err)
		var doc decodedDoc
		require.NoError(rt, json.Unmarshal(plain, &doc))

		assert.Equal(rt, len(doc.Items), doc.Counts[catalog.AllID])
		perCat := map[string]int{}
		for _, it := range doc.Items {
			perCat[it["category"].(string)]++
		}
		for _, cat := range []string{"weapons", "rings"} {
			assert.Equal(rt, perCat[cat], doc.Counts[cat], cat)
		}
	})
}
