package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadOptions controls CSV ingestion.
type LoadOptions struct {
	// Delimiter for CSV. If 0, auto-detects from the file extension.
	Delimiter rune
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// NumericVote is the fraction of parseable cells needed to call a column
	// numeric. 0 uses 0.9.
	NumericVote float64
}

// DefaultLoadOptions returns reasonable ingestion defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{NumericVote: 0.9}
}

// Load reads a CSV file into a Dataset. Column kinds are inferred by
// majority vote over parsed cells: numeric if enough cells parse as numbers,
// boolean if all observed cells look like flags, categorical otherwise.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv %s", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	if ncol == 0 {
		return nil, fmt.Errorf("csv %s has no columns", path)
	}

	raw := make([][]string, ncol)
	maxRows := opt.MaxRows
	rows := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		if maxRows > 0 && rows >= maxRows {
			break
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			raw[j] = append(raw[j], v)
		}
		rows++
	}

	vote := opt.NumericVote
	if vote <= 0 {
		vote = 0.9
	}
	cols := make([]*Column, 0, ncol)
	for j := 0; j < ncol; j++ {
		cols = append(cols, buildColumn(strings.TrimSpace(header[j]), raw[j], vote))
	}
	return New(cols)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// buildColumn infers the column kind and materializes typed storage.
func buildColumn(name string, cells []string, vote float64) *Column {
	n := len(cells)
	numOK, boolOK, present := 0, 0, 0
	for _, v := range cells {
		if isMissing(v) {
			continue
		}
		present++
		if _, ok := ParseNumeric(v); ok {
			numOK++
		}
		if _, ok := parseBool(v); ok {
			boolOK++
		}
	}
	c := &Column{Name: name, Missing: make([]bool, n)}
	switch {
	case present > 0 && boolOK == present && numOK < present:
		c.Kind = KindBool
		c.Nums = make([]float64, n)
		for i, v := range cells {
			if isMissing(v) {
				c.Missing[i] = true
				continue
			}
			b, _ := parseBool(v)
			if b {
				c.Nums[i] = 1
			}
		}
	case present > 0 && float64(numOK) >= vote*float64(present):
		c.Kind = KindNumeric
		c.Nums = make([]float64, n)
		for i, v := range cells {
			x, ok := ParseNumeric(v)
			if isMissing(v) || !ok {
				c.Missing[i] = true
				continue
			}
			c.Nums[i] = x
		}
	default:
		c.Kind = KindCategorical
		c.Strs = make([]string, n)
		for i, v := range cells {
			if isMissing(v) {
				c.Missing[i] = true
				continue
			}
			c.Strs[i] = v
		}
	}
	return c
}

func isMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "na", "n/a", "null", "none", "nan":
		return true
	}
	return false
}

// ParseNumeric parses a cell leniently: currency symbols, thousands
// separators, and percent signs are stripped before parsing.
func ParseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "yes", "y", "1":
		return true, true
	case "f", "false", "no", "n", "0":
		return false, true
	}
	return false, false
}
