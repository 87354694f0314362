package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gomical/domain"
	"gomical/pkg/schedule"
)

// ErrMalformedDocument is returned when an interchange document lacks the
// expected category-list structure.
var ErrMalformedDocument = errors.New("malformed snapshot document")

// SchemaVersion is the interchange document version written on export.
const SchemaVersion = "1.0"

// Metadata describes the snapshot as a whole.
type Metadata struct {
	ExportDate      string `json:"export_date"`
	Version         string `json:"version"`
	TotalCategories int    `json:"total_categories"`
	TotalTypes      int    `json:"total_garbage_types"`
}

// CategoryDoc is one category block of the interchange document. Field names
// follow the on-disk backup format.
type CategoryDoc struct {
	Name        string           `json:"category"`
	Days        schedule.DayList `json:"date"`
	Method      string           `json:"method"`
	SpecialDays []string         `json:"special_days"`
	Note        string           `json:"notion"`
	Types       []string         `json:"garbage_types"`
}

// Document is the external full-catalog interchange form.
type Document struct {
	Metadata   Metadata      `json:"metadata"`
	Categories []CategoryDoc `json:"categories"`
}

// Parse decodes raw JSON into a Document. A document without a categories
// list is malformed; an empty list is not.
func Parse(raw []byte) (*Document, error) {
	var probe struct {
		Categories *json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if probe.Categories == nil {
		return nil, fmt.Errorf("%w: missing categories list", ErrMalformedDocument)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}

// Seeds validates every category block and converts the document into
// insert-ready seeds. Category names must be unique within the document.
// Any invalid block fails the whole conversion so a subsequent import
// cannot partially apply.
func (d *Document) Seeds() ([]domain.CategorySeed, error) {
	seeds := make([]domain.CategorySeed, 0, len(d.Categories))
	seen := make(map[string]bool, len(d.Categories))
	for i, c := range d.Categories {
		seed, err := c.seed()
		if err != nil {
			return nil, fmt.Errorf("category block %d (%s): %w", i, c.Name, err)
		}
		if seen[seed.Name] {
			return nil, fmt.Errorf("category block %d (%s): %w", i, c.Name, domain.ErrDuplicateName)
		}
		seen[seed.Name] = true
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func (c CategoryDoc) seed() (domain.CategorySeed, error) {
	var seed domain.CategorySeed

	if strings.TrimSpace(c.Name) == "" {
		return seed, fmt.Errorf("%w: missing category name", ErrMalformedDocument)
	}
	if strings.TrimSpace(c.Method) == "" {
		return seed, fmt.Errorf("%w: missing method", ErrMalformedDocument)
	}

	days, err := schedule.Encode(c.Days)
	if err != nil {
		return seed, err
	}
	specialDays, err := schedule.EncodeDates(c.SpecialDays)
	if err != nil {
		return seed, err
	}

	return domain.CategorySeed{
		Name:        c.Name,
		Days:        days,
		Method:      c.Method,
		SpecialDays: specialDays,
		Note:        c.Note,
		TypeNames:   c.Types,
	}, nil
}

// Entry pairs a stored category with its garbage types for export.
type Entry struct {
	Category domain.Category
	Types    []domain.GarbageType
}

// Build assembles the interchange document from stored records. Stored
// scalars that fail to decode become empty lists; export never fails on
// legacy or malformed data.
func Build(entries []Entry, exportedAt time.Time) *Document {
	doc := &Document{
		Categories: make([]CategoryDoc, 0, len(entries)),
	}

	totalTypes := 0
	for _, e := range entries {
		names := make([]string, 0, len(e.Types))
		for _, t := range e.Types {
			names = append(names, t.Name)
		}
		totalTypes += len(names)

		doc.Categories = append(doc.Categories, CategoryDoc{
			Name:        e.Category.Name,
			Days:        schedule.Decode(e.Category.Days),
			Method:      e.Category.Method,
			SpecialDays: schedule.DecodeDates(e.Category.SpecialDays),
			Note:        e.Category.Note,
			Types:       names,
		})
	}

	doc.Metadata = Metadata{
		ExportDate:      exportedAt.Format(time.RFC3339),
		Version:         SchemaVersion,
		TotalCategories: len(entries),
		TotalTypes:      totalTypes,
	}
	return doc
}
