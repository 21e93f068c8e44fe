package preprocess

import (
	"fmt"

	"github.com/zpiroux/dsutils/entity"
)

// LabelEncodeColumns replaces the values of each configured column with the index of the value
// among the sorted distinct values (classes) learned in Fit, as an int column at the same
// position. Missing values stay missing, while values not seen in Fit fail Transform with
// entity.ErrUnknownCategory.
type LabelEncodeColumns struct {
	Cols []string `json:"cols"`
}

func (e LabelEncodeColumns) Fit(f *entity.Frame, _ *entity.Column) (entity.Transformer, error) {
	if err := validateCols("labelEncodeColumns", e.Cols, true); err != nil {
		return nil, err
	}
	cols, err := columns(f, e.Cols)
	if err != nil {
		return nil, err
	}
	fitted := &FittedLabelEncodeColumns{
		Cols:    append([]string(nil), e.Cols...),
		Classes: make([][]any, len(cols)),
		index:   make([]map[string]int, len(cols)),
		fitted:  true,
	}
	for i, c := range cols {
		fitted.Classes[i], fitted.index[i] = categories(c)
	}
	return fitted, nil
}

// FittedLabelEncodeColumns is the fitted state of LabelEncodeColumns.
type FittedLabelEncodeColumns struct {
	Cols    []string
	Classes [][]any
	index   []map[string]int
	fitted  bool
}

func (t *FittedLabelEncodeColumns) Transform(f *entity.Frame) (*entity.Frame, error) {
	if t == nil || !t.fitted {
		return nil, entity.ErrNotFitted
	}
	if err := f.HasColumns(t.Cols...); err != nil {
		return nil, err
	}
	out := f.Copy()
	for i, name := range t.Cols {
		c, _ := f.Column(name)
		codes := make([]int64, c.Len())
		var nulls []bool
		for row := range codes {
			if c.IsNull(row) {
				if nulls == nil {
					nulls = make([]bool, len(codes))
				}
				nulls[row] = true
				continue
			}
			code, ok := t.index[i][c.Key(row)]
			if !ok {
				return nil, fmt.Errorf("%w: value %q in column %q", entity.ErrUnknownCategory, entity.FormatValue(c.Value(row)), name)
			}
			codes[row] = int64(code)
		}
		if err := out.Set(entity.NewIntColumn(name, codes).WithNulls(nulls)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
