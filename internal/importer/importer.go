package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Source reads an operations export into a raw Table.
type Source interface {
	Read(r io.Reader) (Table, error)
	Format() string
}

// Registry holds sources keyed by format name.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Panics on duplicate format.
func (r *Registry) Register(s Source) {
	key := strings.ToLower(s.Format())
	if _, ok := r.sources[key]; ok {
		panic("duplicate source format: " + key)
	}
	r.sources[key] = s
}

// Get returns the source for format, or nil.
func (r *Registry) Get(format string) Source {
	return r.sources[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with the CSV and XLSX sources.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVSource{})
	r.Register(&XLSXSource{})
	return r
}

// LoadFile reads path with the source matching its extension.
func (r *Registry) LoadFile(path string) (Table, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	src := r.Get(format)
	if src == nil {
		return Table{}, fmt.Errorf("no source for %q files", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := src.Read(f)
	if err != nil {
		return Table{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// CSVSource reads comma-separated exports with a header row.
type CSVSource struct{}

// Format returns the source name.
func (s *CSVSource) Format() string { return "csv" }

// Read parses the CSV. An input without data rows yields an empty Table.
func (s *CSVSource) Read(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return Table{Header: header, Rows: records[1:]}, nil
}

// XLSXSource reads the first sheet of an Excel workbook.
type XLSXSource struct{}

// Format returns the source name.
func (s *XLSXSource) Format() string { return "xlsx" }

// Read parses the workbook using raw cell values so that amounts keep
// their stored precision instead of the display format.
func (s *XLSXSource) Read(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Table{}, nil
	}
	return Table{Header: rows[0], Rows: rows[1:]}, nil
}
