package camt

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultDateLayout matches the day.month.two-digit-year dates in German
// bank exports, e.g. "03.01.25".
const DefaultDateLayout = "02.01.06"

// Columns names the source column position of each transaction field.
// Indices count from zero.
type Columns struct {
	Date   int
	Memo   int
	Title  int
	Amount int
}

// NewColumns builds a Columns selection, rejecting negative or duplicate
// indices.
func NewColumns(date, memo, title, amount int) (Columns, error) {
	c := Columns{Date: date, Memo: memo, Title: title, Amount: amount}
	return c, c.validate()
}

func (c Columns) validate() error {
	seen := map[int]string{}
	for _, f := range []struct {
		name  string
		index int
	}{
		{"date", c.Date},
		{"memo", c.Memo},
		{"title", c.Title},
		{"amount", c.Amount},
	} {
		if f.index < 0 {
			return fmt.Errorf("%w: %s column index %d is negative", ErrConfig, f.name, f.index)
		}
		if prev, ok := seen[f.index]; ok {
			return fmt.Errorf("%w: %s and %s both use column %d", ErrConfig, prev, f.name, f.index)
		}
		seen[f.index] = f.name
	}
	return nil
}

// Max returns the largest configured column index.
func (c Columns) Max() int {
	max := c.Date
	for _, i := range []int{c.Memo, c.Title, c.Amount} {
		if i > max {
			max = i
		}
	}
	return max
}

// LoadConfig describes how to read one bank CSV export. It is built once
// per invocation and validated before any file I/O.
type LoadConfig struct {
	SkipRows   int     // leading lines to discard, header included
	Columns    Columns // required, four distinct positions
	DateLayout string  // Go reference layout; empty = DefaultDateLayout
	Encoding   string  // "", "utf-8", "latin1", "iso-8859-1", "windows-1252"
}

// Validate checks the configuration eagerly, before any file is opened.
func (cfg LoadConfig) Validate() error {
	if cfg.SkipRows < 0 {
		return fmt.Errorf("%w: skiprows %d is negative", ErrConfig, cfg.SkipRows)
	}
	if err := cfg.Columns.validate(); err != nil {
		return err
	}
	if _, err := cfg.decoder(); err != nil {
		return err
	}
	return nil
}

func (cfg LoadConfig) dateLayout() string {
	if cfg.DateLayout == "" {
		return DefaultDateLayout
	}
	return cfg.DateLayout
}

func (cfg LoadConfig) decoder() (encoding.Encoding, error) {
	switch cfg.Encoding {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrConfig, cfg.Encoding)
	}
}
