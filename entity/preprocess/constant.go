package preprocess

import (
	"github.com/zpiroux/dsutils/entity"
)

// RemoveConstantColumns drops the columns having exactly one distinct non-missing value in the
// training frame. Only Cols are considered, or all columns if Cols is empty.
// Which columns to drop is decided in Fit only; Transform drops the same columns regardless of
// their values in the transformed frame.
type RemoveConstantColumns struct {
	Cols []string `json:"cols,omitempty"`
}

func (e RemoveConstantColumns) Fit(f *entity.Frame, _ *entity.Column) (entity.Transformer, error) {
	if err := validateCols("removeConstantColumns", e.Cols, false); err != nil {
		return nil, err
	}
	cols, err := columns(f, e.Cols)
	if err != nil {
		return nil, err
	}
	fitted := &FittedRemoveConstantColumns{Drop: []string{}, fitted: true}
	for _, c := range cols {
		if isConstant(c) {
			fitted.Drop = append(fitted.Drop, c.Name)
		}
	}
	return fitted, nil
}

func isConstant(c *entity.Column) bool {
	first := ""
	seen := false
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		key := c.Key(i)
		if !seen {
			first, seen = key, true
			continue
		}
		if key != first {
			return false
		}
	}
	return seen
}

// FittedRemoveConstantColumns is the fitted state of RemoveConstantColumns.
type FittedRemoveConstantColumns struct {
	// Drop holds the names of the columns found constant in Fit.
	Drop   []string
	fitted bool
}

func (t *FittedRemoveConstantColumns) Transform(f *entity.Frame) (*entity.Frame, error) {
	if t == nil || !t.fitted {
		return nil, entity.ErrNotFitted
	}
	return f.Drop(t.Drop...)
}
