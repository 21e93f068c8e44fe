package preprocess

import (
	"sort"

	"github.com/zpiroux/dsutils/entity"
)

// categories returns the distinct non-missing values of c in sorted order, together with a
// lookup from value key (as returned by Column.Key) to position.
func categories(c *entity.Column) ([]any, map[string]int) {
	var (
		values []any
		seen   = make(map[string]bool)
	)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) || seen[c.Key(i)] {
			continue
		}
		seen[c.Key(i)] = true
		values = append(values, c.Value(i))
	}
	sort.SliceStable(values, func(i, j int) bool {
		return entity.CompareValues(values[i], values[j]) < 0
	})
	return values, indexByKey(values)
}

func indexByKey(values []any) map[string]int {
	index := make(map[string]int, len(values))
	for i, v := range values {
		index[entity.ValueKey(v)] = i
	}
	return index
}

// columns returns the named columns of f, or all of them if no names are provided.
func columns(f *entity.Frame, names []string) ([]*entity.Column, error) {
	if len(names) == 0 {
		return f.Columns, nil
	}
	if err := f.HasColumns(names...); err != nil {
		return nil, err
	}
	cols := make([]*entity.Column, len(names))
	for i, name := range names {
		cols[i], _ = f.Column(name)
	}
	return cols, nil
}

func validateCols(typeId string, cols []string, required bool) error {
	if required && len(cols) == 0 {
		return entity.InvalidConfig("%s: no columns configured", typeId)
	}
	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if col == "" {
			return entity.InvalidConfig("%s: empty column name", typeId)
		}
		if seen[col] {
			return entity.InvalidConfig("%s: column %q listed more than once", typeId, col)
		}
		seen[col] = true
	}
	return nil
}
