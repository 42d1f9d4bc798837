// Package camt reads the semicolon-delimited CSV exports German bank
// portals produce (loosely called CAMT exports) and normalizes them into
// TransactionRecords.
package camt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/transform"

	"github.com/ofxer-dev/ofxer/internal/model"
)

// Sentinel errors for the conditions callers distinguish.
var (
	// ErrConfig reports a missing or malformed loader option.
	ErrConfig = errors.New("invalid load config")
	// ErrColumnRange reports a configured column index beyond the file width.
	ErrColumnRange = errors.New("column index out of range")
	// ErrAmountFormat reports an amount that is not a German-formatted number.
	// A bad amount usually means the column mapping is wrong, so it aborts
	// the whole conversion instead of dropping the row.
	ErrAmountFormat = errors.New("malformed amount")
)

// Loader converts a bank CSV export into TransactionRecords.
type Loader struct {
	cfg LoadConfig
	log *logrus.Logger
}

// NewLoader validates cfg and returns a Loader. Validation happens here,
// before any file is touched.
func NewLoader(cfg LoadConfig, log *logrus.Logger) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Loader{cfg: cfg, log: log}, nil
}

// LoadFile reads and normalizes the CSV file at path.
func (l *Loader) LoadFile(path string) ([]model.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(f)
}

// Load reads and normalizes CSV data from r. Rows whose date field does not
// parse under the configured layout are dropped, not errored: bank exports
// routinely end in summary lines that are not transactions.
func (l *Loader) Load(r io.Reader) ([]model.TransactionRecord, error) {
	enc, err := l.cfg.decoder()
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(rows) <= l.cfg.SkipRows {
		return []model.TransactionRecord{}, nil
	}
	rows = rows[l.cfg.SkipRows:]

	// A configured index the file cannot satisfy at all is a mapping
	// mistake, checked against the first data row. Shorter rows further
	// down are summary junk and fall through to the date filter.
	if max := l.cfg.Columns.Max(); max >= len(rows[0]) {
		return nil, fmt.Errorf("%w: index %d on a %d-column file", ErrColumnRange, max, len(rows[0]))
	}

	layout := l.cfg.dateLayout()
	records := make([]model.TransactionRecord, 0, len(rows))
	dropped := 0
	for i, row := range rows {
		date, err := time.Parse(layout, field(row, l.cfg.Columns.Date))
		if err != nil {
			l.log.WithField("row", l.cfg.SkipRows+i+1).Debugf("dropping row: %v", err)
			dropped++
			continue
		}

		amount, err := ParseGermanAmount(field(row, l.cfg.Columns.Amount))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", l.cfg.SkipRows+i+1, err)
		}

		records = append(records, model.TransactionRecord{
			Date:   date,
			Payee:  CollapseWhitespace(field(row, l.cfg.Columns.Title)),
			Memo:   CollapseWhitespace(field(row, l.cfg.Columns.Memo)),
			Amount: amount,
		})
	}

	l.log.WithFields(logrus.Fields{"records": len(records), "dropped": dropped}).
		Debug("loaded CSV")
	return records, nil
}

// field returns row[i], or "" when the row is too short.
func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseGermanAmount converts a German-formatted number to a decimal:
// "1.890,41" -> 1890.41. The period is a thousands separator and is
// stripped first; the comma becomes the decimal point. An empty string
// is treated as zero. Anything else that does not parse afterwards is
// an ErrAmountFormat.
func ParseGermanAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	n := strings.ReplaceAll(s, ".", "")
	n = strings.ReplaceAll(n, ",", ".")
	d, err := decimal.NewFromString(n)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrAmountFormat, s)
	}
	return d, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace replaces every run of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}
