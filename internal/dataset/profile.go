package dataset

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Profile is a markdown-friendly summary of a dataset.
type Profile struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Warnings []string
}

// ColumnSummary captures kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min, Max, Mean, Std float64
	Q25, Median, Q75    float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Summarize profiles every column.
func Summarize(ds *Dataset, name string) *Profile {
	p := &Profile{Name: name, Rows: ds.Rows()}
	for _, c := range ds.Columns() {
		s := ColumnSummary{Name: c.Name, Kind: c.Kind}
		s.Missing = c.MissingCount()
		s.NonNull = ds.Rows() - s.Missing
		switch c.Kind {
		case KindNumeric, KindBool:
			vals := make([]float64, 0, s.NonNull)
			for i, v := range c.Nums {
				if !c.Missing[i] {
					vals = append(vals, v)
				}
			}
			if len(vals) > 0 {
				sort.Float64s(vals)
				s.Min = vals[0]
				s.Max = vals[len(vals)-1]
				s.Mean, s.Std = stat.MeanStdDev(vals, nil)
				s.Q25 = stat.Quantile(0.25, stat.Empirical, vals, nil)
				s.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)
				s.Q75 = stat.Quantile(0.75, stat.Empirical, vals, nil)
			}
		case KindCategorical:
			counts := map[string]int{}
			for i, v := range c.Strs {
				if !c.Missing[i] {
					counts[v]++
				}
			}
			s.Unique = len(counts)
			tops := make([]CategoryCount, 0, len(counts))
			for k, v := range counts {
				tops = append(tops, CategoryCount{Value: k, Count: v})
			}
			sort.Slice(tops, func(i, j int) bool {
				if tops[i].Count == tops[j].Count {
					return tops[i].Value < tops[j].Value
				}
				return tops[i].Count > tops[j].Count
			})
			if len(tops) > 8 {
				tops = tops[:8]
			}
			s.TopValues = tops
		}
		p.Cols = append(p.Cols, s)
	}
	return p
}

// Markdown renders a compact profile in the report section style.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(p.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric, KindBool:
			b.WriteString(fmt.Sprintf(" — min %.4g, q25 %.4g, median %.4g, q75 %.4g, max %.4g, mean %.4g, std %.4g",
				c.Min, c.Q25, c.Median, c.Q75, c.Max, c.Mean, c.Std))
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(p.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range p.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
