// Package database packages normalized items from every category into the
// single JSON document served to the item browser, with compressed variants.
package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/catalog"
	"github.com/cory-johannsen/rtdb/internal/item"
)

// Document is the published database.
type Document struct {
	Items []*item.Item `json:"items"`
	// Counts holds the valid item count per category id plus catalog.AllID.
	Counts     map[string]int          `json:"counts"`
	Categories map[string]catalog.Meta `json:"categories"`
}

// Build loads every category from src and returns the document of valid,
// cleaned items sorted by case-insensitive name.
//
// Postcondition: Counts[catalog.AllID] == len(Items) and, for each category,
// Counts[id] equals the number of items whose Category is id.
func Build(src blueprint.Source, table catalog.Table, logger *zap.Logger) *Document {
	doc := &Document{
		Items:      make([]*item.Item, 0),
		Counts:     make(map[string]int, len(table.Categories)+1),
		Categories: table.Metas(),
	}

	for _, cat := range table.Categories {
		bps := src.Load(cat)
		valid := 0
		for _, bp := range bps {
			it := item.Extract(bp, cat.ID)
			if !it.Valid() {
				logger.Debug("dropping invalid item",
					zap.String("category", cat.ID),
					zap.String("path", bp.Path()),
				)
				continue
			}
			it.Clean()
			doc.Items = append(doc.Items, it)
			valid++
		}
		doc.Counts[cat.ID] = valid
		logger.Info("loaded category",
			zap.String("category", cat.ID),
			zap.Int("found", len(bps)),
			zap.Int("valid", valid),
		)
	}
	doc.Counts[catalog.AllID] = len(doc.Items)

	sort.SliceStable(doc.Items, func(i, j int) bool {
		return strings.ToLower(doc.Items[i].Name) < strings.ToLower(doc.Items[j].Name)
	})
	return doc
}

// Encode returns the minified JSON encoding of d. HTML characters in item
// text are written verbatim rather than as \u escapes.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encoding item database: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
