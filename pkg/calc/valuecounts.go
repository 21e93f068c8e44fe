// Package calc provides descriptive calculations on frames.
package calc

import (
	"sort"
	"strings"

	"github.com/zpiroux/dsutils/entity"
)

// ValueCount is the number of rows having a specific value, or combination of values, in the
// counted columns. Values holds one entry per column, with nil for a missing value.
type ValueCount struct {
	Values []any
	Count  int

	// Ratio is Count divided by the number of counted rows.
	Ratio float64
}

type ValueCountsOptions struct {
	// Ascending orders by increasing count instead of the default decreasing.
	Ascending bool

	// DropNA excludes rows with a missing value in any of the columns.
	DropNA bool

	// Unsorted keeps the result in order of first occurrence instead of ordering by count.
	Unsorted bool
}

// DefaultValueCountsOptions returns the options most commonly used: sorted by decreasing
// count, with missing values excluded.
func DefaultValueCountsOptions() ValueCountsOptions {
	return ValueCountsOptions{DropNA: true}
}

// ValueCountsComb counts the occurrences of each distinct combination of values in the provided
// columns. Rows with equal counts keep the order in which their values first occur.
func ValueCountsComb(f *entity.Frame, columns []string, opts ValueCountsOptions) ([]ValueCount, error) {
	if len(columns) == 0 {
		return nil, entity.InvalidConfig("no columns to count values for")
	}
	if err := f.HasColumns(columns...); err != nil {
		return nil, err
	}
	cols := make([]*entity.Column, len(columns))
	for i, name := range columns {
		cols[i], _ = f.Column(name)
	}

	var (
		counts  []ValueCount
		index   = make(map[string]int)
		total   int
		keyBuf  strings.Builder
		numRows = f.NumRows()
	)
	for row := 0; row < numRows; row++ {
		if opts.DropNA && anyNull(cols, row) {
			continue
		}
		total++
		keyBuf.Reset()
		for _, c := range cols {
			keyBuf.WriteString(c.Key(row))
			keyBuf.WriteByte(0)
		}
		key := keyBuf.String()
		if i, ok := index[key]; ok {
			counts[i].Count++
			continue
		}
		values := make([]any, len(cols))
		for j, c := range cols {
			values[j] = c.Value(row)
		}
		index[key] = len(counts)
		counts = append(counts, ValueCount{Values: values, Count: 1})
	}

	for i := range counts {
		counts[i].Ratio = float64(counts[i].Count) / float64(total)
	}
	if !opts.Unsorted {
		sort.SliceStable(counts, func(i, j int) bool {
			if opts.Ascending {
				return counts[i].Count < counts[j].Count
			}
			return counts[i].Count > counts[j].Count
		})
	}
	return counts, nil
}

func anyNull(cols []*entity.Column, row int) bool {
	for _, c := range cols {
		if c.IsNull(row) {
			return true
		}
	}
	return false
}
