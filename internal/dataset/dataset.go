// Package dataset holds the in-memory listings table: loading, cleaning,
// row selection, and column profiling.
package dataset

import (
	"fmt"
	"sort"
)

// Kind classifies a column after type inference.
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindBool:
		return "boolean"
	}
	return "unknown"
}

// Column is one named field across all records. Numeric and boolean columns
// use Nums (booleans as 0/1); categorical columns use Strs. Missing marks
// absent cells in either representation.
type Column struct {
	Name    string
	Kind    Kind
	Nums    []float64
	Strs    []string
	Missing []bool
}

// MissingCount returns how many cells are absent.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// Dataset is an ordered collection of records sharing a schema. Columns keep
// insertion order; byName resolves lookups.
type Dataset struct {
	cols   []*Column
	byName map[string]int
	rows   int
}

// New builds a dataset from columns. All columns must have equal length.
func New(cols []*Column) (*Dataset, error) {
	ds := &Dataset{byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			ds.rows = colLen(c)
		} else if colLen(c) != ds.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, colLen(c), ds.rows)
		}
		if _, dup := ds.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		ds.byName[c.Name] = i
		ds.cols = append(ds.cols, c)
	}
	return ds, nil
}

func colLen(c *Column) int {
	if c.Kind == KindCategorical {
		return len(c.Strs)
	}
	return len(c.Nums)
}

// Rows returns the record count.
func (ds *Dataset) Rows() int { return ds.rows }

// Columns returns the columns in schema order.
func (ds *Dataset) Columns() []*Column { return ds.cols }

// Column looks a column up by name.
func (ds *Dataset) Column(name string) (*Column, bool) {
	i, ok := ds.byName[name]
	if !ok {
		return nil, false
	}
	return ds.cols[i], true
}

// ColumnNames returns names in schema order.
func (ds *Dataset) ColumnNames() []string {
	out := make([]string, len(ds.cols))
	for i, c := range ds.cols {
		out[i] = c.Name
	}
	return out
}

// Target extracts a fully observed numeric column. Used for the prediction
// target, which cleaning guarantees has no missing cells.
func (ds *Dataset) Target(name string) ([]float64, error) {
	c, ok := ds.Column(name)
	if !ok {
		return nil, fmt.Errorf("target column %q not in dataset", name)
	}
	if c.Kind == KindCategorical {
		return nil, fmt.Errorf("target column %q is categorical", name)
	}
	for i, m := range c.Missing {
		if m {
			return nil, fmt.Errorf("target column %q has a missing value at row %d", name, i)
		}
	}
	out := make([]float64, len(c.Nums))
	copy(out, c.Nums)
	return out, nil
}

// Select returns a new dataset holding only the given rows, in the given
// order. Indices may repeat; the source is left untouched.
func (ds *Dataset) Select(rows []int) (*Dataset, error) {
	cols := make([]*Column, 0, len(ds.cols))
	for _, c := range ds.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, Missing: make([]bool, len(rows))}
		if c.Kind == KindCategorical {
			nc.Strs = make([]string, len(rows))
		} else {
			nc.Nums = make([]float64, len(rows))
		}
		for i, r := range rows {
			if r < 0 || r >= ds.rows {
				return nil, fmt.Errorf("row index %d out of range [0,%d)", r, ds.rows)
			}
			nc.Missing[i] = c.Missing[r]
			if c.Kind == KindCategorical {
				nc.Strs[i] = c.Strs[r]
			} else {
				nc.Nums[i] = c.Nums[r]
			}
		}
		cols = append(cols, nc)
	}
	return New(cols)
}

// Drop returns a new dataset without the named columns. Unknown names are a
// configuration error.
func (ds *Dataset) Drop(names ...string) (*Dataset, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := ds.byName[n]; !ok {
			return nil, fmt.Errorf("cannot drop unknown column %q", n)
		}
		drop[n] = true
	}
	var kept []*Column
	for _, c := range ds.cols {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	return New(kept)
}

// Levels returns the distinct observed values of a categorical column,
// sorted for deterministic iteration.
func (c *Column) Levels() []string {
	seen := map[string]bool{}
	for i, s := range c.Strs {
		if !c.Missing[i] {
			seen[s] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
