// Package site renders the static HTML item browser: one listing page per
// category, one detail page per item, and an index.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/catalog"
	"github.com/cory-johannsen/rtdb/internal/config"
	"github.com/cory-johannsen/rtdb/internal/item"
)

const noDescription = "No description available."

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// staticFiles maps embedded assets to their location below the output root.
var staticFiles = map[string]string{
	"static/style.css": "css/style.css",
	"static/search.js": "js/search.js",
}

// Report summarises a site generation run.
type Report struct {
	// Counts holds the number of loaded blueprints per category id.
	Counts map[string]int
	// Pages is the number of HTML pages written.
	Pages int
	// Skipped is the number of blueprints whose guid cannot name a file.
	Skipped int
}

// Generator renders the static site from a Source.
type Generator struct {
	source blueprint.Source
	table  catalog.Table
	cfg    config.SiteConfig
	logger *zap.Logger
	pages  map[string]*template.Template
}

// New constructs a Generator and parses its embedded templates.
//
// Precondition: source and logger must be non-nil; table must be validated.
// Postcondition: returns a non-nil Generator, or an error if a template fails
// to parse.
func New(source blueprint.Source, table catalog.Table, cfg config.SiteConfig, logger *zap.Logger) (*Generator, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Generator{source: source, table: table, cfg: cfg, logger: logger, pages: pages}, nil
}

// parseTemplates builds one template set per page kind, each sharing the
// layout, sidebar and card definitions.
func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.ParseFS(templateFS,
		"templates/layout.html", "templates/sidebar.html", "templates/card.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout templates: %w", err)
	}
	pages := make(map[string]*template.Template, 3)
	for _, name := range []string{"listing", "detail", "index"} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = clone
	}
	return pages, nil
}

// Run loads every category and writes the site below outputDir. Pages
// written before a failure are left in place.
//
// Precondition: outputDir must exist or be creatable.
// Postcondition: returns a Report of the run, or a non-nil error on the first
// write failure.
func (g *Generator) Run(outputDir string) (*Report, error) {
	start := time.Now()
	for _, dir := range []string{"", "items", "css", "js"} {
		if err := os.MkdirAll(filepath.Join(outputDir, dir), 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	report := &Report{Counts: make(map[string]int, len(g.table.Categories))}
	loaded := make(map[string][]*blueprint.Blueprint, len(g.table.Categories))
	for _, cat := range g.table.Categories {
		bps := g.source.Load(cat)
		sortByName(bps)
		loaded[cat.ID] = bps
		report.Counts[cat.ID] = len(bps)
		g.logger.Info("loaded category", zap.String("category", cat.ID), zap.Int("items", len(bps)))
	}

	for _, cat := range g.table.Categories {
		bps := loaded[cat.ID]
		if err := g.writeListing(outputDir, cat.ID+".html", cat, cat.Title, bps, report); err != nil {
			return nil, err
		}
		for _, sub := range cat.Subcategories {
			var matched []*blueprint.Blueprint
			for _, bp := range bps {
				if sub.Matches(bp.Raw()) {
					matched = append(matched, bp)
				}
			}
			name := cat.ID + "-" + sub.ID + ".html"
			if err := g.writeListing(outputDir, name, cat, sub.Title, matched, report); err != nil {
				return nil, err
			}
		}
		for _, bp := range bps {
			if err := g.writeDetail(outputDir, cat, bp, report); err != nil {
				return nil, err
			}
		}
	}

	if err := g.writeIndex(outputDir, report); err != nil {
		return nil, err
	}
	if err := writeStatic(outputDir); err != nil {
		return nil, err
	}

	g.logger.Info("site complete",
		zap.String("output", outputDir),
		zap.Int("pages", report.Pages),
		zap.Int("skipped", report.Skipped),
		zap.String("total_items", formatCount(sum(report.Counts))),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return report, nil
}

// writeListing writes one card grid page. Cards use the layout of cat even
// when the page lists a subcategory.
func (g *Generator) writeListing(outputDir, name string, cat catalog.Category, title string, bps []*blueprint.Blueprint, r *Report) error {
	cards := make([]card, 0, len(bps))
	for _, bp := range bps {
		cards = append(cards, newCard(bp, cat.ID, cat.Title))
	}
	page := listingPage{
		chrome:      g.chrome(title, "", cat.ID, r.Counts, true),
		Heading:     title,
		Description: fmt.Sprintf("Browse all %d %s in %s.", len(bps), strings.ToLower(title), g.cfg.Subtitle),
		Cards:       cards,
	}
	return g.write(r, "listing", filepath.Join(outputDir, name), page)
}

// writeDetail writes items/<guid>.html. Blueprints without a guid get no
// page; guids that are not plain file names are skipped with a warning.
func (g *Generator) writeDetail(outputDir string, cat catalog.Category, bp *blueprint.Blueprint, r *Report) error {
	guid := bp.GUID()
	if guid == "" {
		return nil
	}
	if !safeFileName(guid) {
		g.logger.Warn("skipping detail page for unsafe guid",
			zap.String("category", cat.ID),
			zap.String("guid", guid),
			zap.String("path", bp.Path()),
		)
		r.Skipped++
		return nil
	}

	data := bp.Data()
	name := displayName(bp)
	rarity := text(data.Get("Rarity"), item.DefaultRarity)
	description := text(data.Get("Description"), "")
	if description == "" {
		description = noDescription
	}
	page := detailPage{
		chrome:        g.chrome(name, "../", cat.ID, r.Counts, false),
		CategoryID:    cat.ID,
		CategoryTitle: cat.Title,
		Name:          name,
		GUID:          guid,
		Rarity:        rarity,
		RarityClass:   RarityClass(rarity),
		Description:   description,
		Stats:         detailStats(bp),
	}
	return g.write(r, "detail", filepath.Join(outputDir, "items", guid+".html"), page)
}

func (g *Generator) writeIndex(outputDir string, r *Report) error {
	var featured []featuredCategory
	for _, cat := range g.table.Categories {
		if cat.Summary == "" {
			continue
		}
		featured = append(featured, featuredCategory{
			ID:      cat.ID,
			Title:   cat.Title,
			Icon:    cat.Icon,
			Count:   r.Counts[cat.ID],
			Summary: cat.Summary,
		})
	}
	page := indexPage{
		chrome:   g.chrome(g.cfg.Title, "", "", r.Counts, false),
		Heading:  g.cfg.Subtitle + " Database",
		Total:    formatCount(sum(r.Counts)),
		Featured: featured,
	}
	page.PageTitle = g.cfg.Title + " - " + g.cfg.Subtitle
	return g.write(r, "index", filepath.Join(outputDir, "index.html"), page)
}

// chrome builds the shared layout for a page titled title, highlighting the
// active category in the sidebar.
func (g *Generator) chrome(title, base, active string, counts map[string]int, script bool) chrome {
	nav := make([]navSection, 0, len(g.table.Sections))
	for _, sec := range g.table.Sections {
		s := navSection{Title: sec.Title}
		for _, cat := range g.table.InSection(sec.ID) {
			s.Items = append(s.Items, navItem{
				ID:     cat.ID,
				Title:  cat.Title,
				Count:  counts[cat.ID],
				Active: cat.ID == active,
			})
		}
		nav = append(nav, s)
	}
	return chrome{
		Site:      g.cfg,
		PageTitle: title + " - " + g.cfg.Title,
		Base:      base,
		Nav:       nav,
		Script:    script,
	}
}

// write renders the named page template into path.
func (g *Generator) write(r *Report, page, path string, data any) error {
	var buf bytes.Buffer
	if err := g.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	r.Pages++
	g.logger.Debug("wrote page", zap.String("path", path))
	return nil
}

func writeStatic(outputDir string) error {
	for src, dst := range staticFiles {
		data, err := fs.ReadFile(staticFS, src)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", src, err)
		}
		path := filepath.Join(outputDir, filepath.FromSlash(dst))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// sortByName orders blueprints by their raw top-level name, byte-wise. A
// missing name sorts as "".
func sortByName(bps []*blueprint.Blueprint) {
	sort.SliceStable(bps, func(i, j int) bool {
		return bps[i].Name() < bps[j].Name()
	})
}

// safeFileName reports whether s can be used verbatim as a file name inside
// the items directory.
func safeFileName(s string) bool {
	return s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && filepath.Base(s) == s
}

// formatCount renders n with English thousands separators.
func formatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func sum(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
