package transform

import (
	"github.com/zpiroux/dsutils/entity"
)

// SelectColumns keeps only the configured columns, in the configured order.
type SelectColumns struct {
	Cols []string `json:"cols"`
}

func NewSelectColumns(cols ...string) (SelectColumns, error) {
	t := SelectColumns{Cols: cols}
	return t, t.Validate()
}

func (t SelectColumns) Validate() error {
	if len(t.Cols) == 0 {
		return entity.InvalidConfig("selectColumns: no columns to select")
	}
	seen := make(map[string]bool, len(t.Cols))
	for _, col := range t.Cols {
		if seen[col] {
			return entity.InvalidConfig("selectColumns: column %q listed more than once", col)
		}
		seen[col] = true
	}
	return nil
}

func (t SelectColumns) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) {
	return t, t.Validate()
}

func (t SelectColumns) Transform(f *entity.Frame) (*entity.Frame, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return f.Select(t.Cols...)
}
