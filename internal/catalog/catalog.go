// Package catalog defines the category table shared by both generators: which
// blueprint directory feeds which category, and how each category is titled
// and grouped in the site navigation.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// AllID is the synthetic category id covering every item.
const AllID = "all"

//go:embed categories.yaml
var defaultTable []byte

// Meta is the display metadata of a category.
type Meta struct {
	Title string `yaml:"title" json:"title"`
	Icon  string `yaml:"icon" json:"icon"`
}

// Section groups categories in the site sidebar.
type Section struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// Subcategory is a filtered view of a category's blueprints.
type Subcategory struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	// Filter is a gjson path evaluated against the raw blueprint; the
	// blueprint belongs to the subcategory when the result is truthy.
	Filter string `yaml:"filter"`
}

// Matches reports whether the raw blueprint JSON satisfies the filter.
func (s Subcategory) Matches(raw []byte) bool {
	return gjson.GetBytes(raw, s.Filter).Bool()
}

// Category maps one blueprint source directory to one output category.
type Category struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Icon          string        `yaml:"icon"`
	Section       string        `yaml:"section"`
	Path          string        `yaml:"path"`
	Summary       string        `yaml:"summary"`
	Subcategories []Subcategory `yaml:"subcategories"`
}

// Meta returns the category's display metadata.
func (c Category) Meta() Meta {
	return Meta{Title: c.Title, Icon: c.Icon}
}

// Table is the immutable category configuration handed to each pipeline.
type Table struct {
	All        Meta       `yaml:"all"`
	Sections   []Section  `yaml:"sections"`
	Categories []Category `yaml:"categories"`
}

// Validate checks that the Table satisfies its invariants.
//
// Postcondition: returns nil iff ids are unique and non-empty, every category
// has a title and path, and every section reference resolves.
func (t Table) Validate() error {
	var errs []error
	if t.All.Title == "" {
		errs = append(errs, errors.New("all.title must not be empty"))
	}

	sections := make(map[string]bool, len(t.Sections))
	for _, s := range t.Sections {
		if s.ID == "" {
			errs = append(errs, errors.New("section id must not be empty"))
			continue
		}
		if sections[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate section id %q", s.ID))
		}
		sections[s.ID] = true
	}

	if len(t.Categories) == 0 {
		errs = append(errs, errors.New("at least one category is required"))
	}
	seen := make(map[string]bool, len(t.Categories))
	for _, c := range t.Categories {
		switch {
		case c.ID == "":
			errs = append(errs, errors.New("category id must not be empty"))
			continue
		case c.ID == AllID:
			errs = append(errs, fmt.Errorf("category id %q is reserved", AllID))
		case seen[c.ID]:
			errs = append(errs, fmt.Errorf("duplicate category id %q", c.ID))
		}
		seen[c.ID] = true
		if c.Title == "" {
			errs = append(errs, fmt.Errorf("category %q: title must not be empty", c.ID))
		}
		if c.Path == "" {
			errs = append(errs, fmt.Errorf("category %q: path must not be empty", c.ID))
		}
		if c.Section != "" && !sections[c.Section] {
			errs = append(errs, fmt.Errorf("category %q: unknown section %q", c.ID, c.Section))
		}
		subs := make(map[string]bool, len(c.Subcategories))
		for _, s := range c.Subcategories {
			if s.ID == "" || s.Filter == "" {
				errs = append(errs, fmt.Errorf("category %q: subcategory needs id and filter", c.ID))
				continue
			}
			if subs[s.ID] {
				errs = append(errs, fmt.Errorf("category %q: duplicate subcategory %q", c.ID, s.ID))
			}
			subs[s.ID] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("category table validation failed: %v", errs)
	}
	return nil
}

// Get returns the category with the given id.
//
// Postcondition: ok is true iff the id is configured.
func (t Table) Get(id string) (Category, bool) {
	for _, c := range t.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// InSection returns the categories assigned to the section, in table order.
func (t Table) InSection(sectionID string) []Category {
	var out []Category
	for _, c := range t.Categories {
		if c.Section == sectionID {
			out = append(out, c)
		}
	}
	return out
}

// Metas returns the display metadata of every category keyed by id,
// including the synthetic AllID entry.
//
// Postcondition: len(result) == len(t.Categories)+1.
func (t Table) Metas() map[string]Meta {
	out := make(map[string]Meta, len(t.Categories)+1)
	out[AllID] = t.All
	for _, c := range t.Categories {
		out[c.ID] = c.Meta()
	}
	return out
}

// Parse decodes and validates a category table from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the table schema.
// Postcondition: returns a validated Table or a non-nil error.
func Parse(data []byte) (Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Table{}, fmt.Errorf("parsing category table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Default returns the built-in category table.
func Default() (Table, error) {
	return Parse(defaultTable)
}

// Load returns the category table stored at path, or the built-in table when
// path is empty.
//
// Postcondition: returns a validated Table or a non-nil error.
func Load(path string) (Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading category table %s: %w", path, err)
	}
	return Parse(data)
}
