// Package export writes category report rows to a spreadsheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/kopilka-dev/kopilka/internal/importer"
	"github.com/kopilka-dev/kopilka/internal/model"
)

// SheetName is the sheet written to XLSX exports.
const SheetName = "report"

const (
	numFields   = 8
	colOpDate   = 0
	colPayDate  = 1
	colCard     = 2
	colStatus   = 3
	colAmount   = 4
	colCurrency = 5
	colCategory = 6
	colDesc     = 7
)

// Header names the exported columns the way the bank export does, so a
// report can be read back with the importer.
var Header = []string{
	importer.ColOperationDate,
	importer.ColPaymentDate,
	importer.ColCardNumber,
	importer.ColStatus,
	importer.ColAmount,
	importer.ColCurrency,
	importer.ColCategory,
	importer.ColDescription,
}

// Exporter persists the rows of a category report.
type Exporter interface {
	Export(rows []model.Transaction) error
}

// MarshalRow converts a Transaction to a spreadsheet row.
func MarshalRow(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colOpDate] = t.OperationDate.Format(model.SourceDateFormat)
	if !t.PaymentDate.IsZero() {
		row[colPayDate] = t.PaymentDate.Format(model.SourceDateFormat)
	}
	if t.CardID != "" {
		row[colCard] = "*" + t.CardID
	}
	row[colStatus] = string(t.Status)
	row[colAmount] = t.Amount.StringFixed(2)
	row[colCurrency] = t.Currency
	row[colCategory] = t.Category
	row[colDesc] = t.Description
	return row
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range rows {
		if err := cw.Write(MarshalRow(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes rows to a single-sheet workbook. Amounts are stored as
// numbers, everything else as text.
func WriteXLSX(w io.Writer, rows []model.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range rows {
		cells := make([]any, numFields)
		for j, v := range MarshalRow(t) {
			cells[j] = v
		}
		cells[colAmount] = t.Amount.InexactFloat64()

		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, ref, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// FileExporter writes reports to Path, choosing CSV or XLSX by extension.
type FileExporter struct {
	Path string
}

// Export creates the parent directory and replaces Path. The report is
// written to a temporary file in the same directory and renamed into
// place, so concurrent exports never leave a mixed file behind.
func (e *FileExporter) Export(rows []model.Transaction) error {
	var write func(io.Writer, []model.Transaction) error
	switch ext := strings.ToLower(filepath.Ext(e.Path)); ext {
	case ".csv":
		write = WriteCSV
	case ".xlsx":
		write = WriteXLSX
	default:
		return fmt.Errorf("unsupported report format %q", ext)
	}

	dir := filepath.Dir(e.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(e.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing report %s: %w", e.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report %s: %w", e.Path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("setting report mode: %w", err)
	}
	if err := os.Rename(tmp, e.Path); err != nil {
		return fmt.Errorf("replacing report %s: %w", e.Path, err)
	}
	return nil
}

// IfNonEmpty exports rows when there are any and reports whether a write
// succeeded. An empty set is only logged. Export failures are logged and
// never reach the caller.
func IfNonEmpty(log zerolog.Logger, exp Exporter, rows []model.Transaction) bool {
	if len(rows) == 0 {
		log.Warn().Msg("report is empty, nothing exported")
		return false
	}
	if exp == nil {
		return false
	}
	if err := exp.Export(rows); err != nil {
		log.Error().Err(err).Int("rows", len(rows)).Msg("exporting report")
		return false
	}
	return true
}
