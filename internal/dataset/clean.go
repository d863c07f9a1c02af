package dataset

import (
	"fmt"
	"strings"
)

// CleanOptions configures the cleaning pass that turns a raw load into the
// modeling table.
type CleanOptions struct {
	// Target is the prediction target; rows where it is missing, zero, or
	// above Cap are removed.
	Target string
	// Cap is the upper bound on the target. Rows above it are treated as
	// outliers and dropped.
	Cap float64
	// Drop lists columns removed before modeling (free text, URLs, ids).
	Drop []string
	// DeriveBools lists categorical columns recoded to presence flags:
	// non-missing becomes true, missing becomes false.
	DeriveBools []string
}

// Clean validates options against the schema, filters target rows, derives
// boolean flags, and drops configured columns. Column references that do not
// resolve are a configuration error reported before any filtering.
func Clean(ds *Dataset, opt CleanOptions) (*Dataset, error) {
	tgt, ok := ds.Column(opt.Target)
	if !ok {
		return nil, fmt.Errorf("target column %q not in dataset", opt.Target)
	}
	if tgt.Kind == KindCategorical {
		return nil, fmt.Errorf("target column %q is categorical", opt.Target)
	}
	for _, name := range opt.Drop {
		if _, ok := ds.Column(name); !ok {
			return nil, fmt.Errorf("drop_columns references unknown column %q", name)
		}
	}
	for _, name := range opt.DeriveBools {
		c, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("derive_bools references unknown column %q", name)
		}
		if c.Kind != KindCategorical {
			return nil, fmt.Errorf("derive_bools column %q is %s, want categorical", name, c.Kind)
		}
	}
	if opt.Cap <= 0 {
		return nil, fmt.Errorf("target cap must be positive, got %g", opt.Cap)
	}

	keep := make([]int, 0, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		if tgt.Missing[i] {
			continue
		}
		v := tgt.Nums[i]
		if v <= 0 || v > opt.Cap {
			continue
		}
		keep = append(keep, i)
	}
	out, err := ds.Select(keep)
	if err != nil {
		return nil, err
	}

	for _, name := range opt.DeriveBools {
		c, _ := out.Column(name)
		nums := make([]float64, out.Rows())
		for i := range c.Strs {
			if !c.Missing[i] && strings.TrimSpace(c.Strs[i]) != "" {
				nums[i] = 1
			}
		}
		c.Kind = KindBool
		c.Nums = nums
		c.Strs = nil
		c.Missing = make([]bool, out.Rows())
	}

	if len(opt.Drop) > 0 {
		out, err = out.Drop(opt.Drop...)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
