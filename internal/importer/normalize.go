package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kopilka-dev/kopilka/internal/model"
)

// ErrMissingColumns reports a table lacking required columns.
var ErrMissingColumns = errors.New("missing required columns")

// ParseError describes a cell that could not be parsed.
type ParseError struct {
	Row    int // 1-based, header is row 1
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: parsing %s %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Normalize converts a raw table into transactions. An empty table yields
// nil without error. Missing columns produce an error wrapping
// ErrMissingColumns; the first bad cell produces a *ParseError. Rows whose
// cells are all blank are skipped.
func Normalize(t Table) ([]model.Transaction, error) {
	if t.Empty() {
		return nil, nil
	}

	idx := t.index()
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var txns []model.Transaction
	for i, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		txn, err := normalizeRow(row, idx, i+2)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func normalizeRow(row []string, idx map[string]int, rowNum int) (model.Transaction, error) {
	get := func(col string) string { return cell(row, idx[col]) }

	raw := get(ColOperationDate)
	opDate, err := ParseSourceDate(raw)
	if err != nil {
		return model.Transaction{}, &ParseError{Row: rowNum, Column: ColOperationDate, Value: raw, Err: err}
	}

	var payDate time.Time
	if raw = get(ColPaymentDate); raw != "" {
		payDate, err = ParseSourceDate(raw)
		if err != nil {
			return model.Transaction{}, &ParseError{Row: rowNum, Column: ColPaymentDate, Value: raw, Err: err}
		}
	}

	raw = get(ColAmount)
	amount, err := ParseAmount(raw)
	if err != nil {
		return model.Transaction{}, &ParseError{Row: rowNum, Column: ColAmount, Value: raw, Err: err}
	}

	return model.Transaction{
		OperationDate: opDate,
		PaymentDate:   payDate,
		Amount:        amount,
		Currency:      get(ColCurrency),
		Status:        model.Status(get(ColStatus)),
		Category:      get(ColCategory),
		Description:   get(ColDescription),
		CardID:        CardDigits(get(ColCardNumber)),
	}, nil
}

// ParseSourceDate parses "DD.MM.YYYY[ HH:MM:SS]", discarding the time of day.
func ParseSourceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return time.Parse(model.SourceDateFormat, s)
}

// ParseAmount parses a signed decimal, accepting a comma decimal separator
// and space digit grouping.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Decimal{}, errors.New("empty amount")
	}
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}

// CardDigits strips masking characters preceding the card digits: "*7197" -> "7197".
func CardDigits(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Normalizer wraps Normalize with the recover-and-log policy: it never
// fails, degrading to an empty set on any shape or parse problem.
type Normalizer struct {
	log zerolog.Logger
}

// NewNormalizer creates a Normalizer logging through log.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize returns the canonical transactions of t, or nil.
func (n *Normalizer) Normalize(t Table) []model.Transaction {
	if t.Empty() {
		n.log.Warn().Msg("operations table is empty")
		return nil
	}

	txns, err := Normalize(t)
	if err != nil {
		var pe *ParseError
		switch {
		case errors.Is(err, ErrMissingColumns):
			n.log.Error().Err(err).Msg("operations table has the wrong shape")
		case errors.As(err, &pe):
			n.log.Error().Err(err).Int("row", pe.Row).Str("column", pe.Column).Msg("operations table has a malformed cell")
		default:
			n.log.Error().Err(err).Msg("normalizing operations table")
		}
		return nil
	}
	return txns
}
