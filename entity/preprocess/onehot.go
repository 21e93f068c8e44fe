package preprocess

import (
	"fmt"
	"math"

	"github.com/zpiroux/dsutils/entity"
)

const (
	HandleUnknownIgnore = "ignore"
	HandleUnknownError  = "error"
)

// OneHotEncoder replaces each configured column with one float 0/1 indicator column per category
// learned in Fit, named "<col>_<category>".
//
// Categories are the sorted distinct non-missing training values, or, if NValues is set, the fixed
// integer range 0..NValues-1 (in which case training values outside the range fail Fit).
// HandleUnknown decides what happens with categories not seen in Fit: "ignore" (default) gives
// all-zero indicators for that row, "error" fails Transform with entity.ErrUnknownCategory.
// Missing values always give all-zero indicators. Fit fails with entity.ErrInvalidConfig if two
// indicators get the same name, or one gets the name of a column not encoded.
type OneHotEncoder struct {
	Cols          []string `json:"cols"`
	NValues       int      `json:"nValues,omitempty"`
	HandleUnknown string   `json:"handleUnknown,omitempty"`
}

func (e OneHotEncoder) Validate() error {
	if err := validateCols("oneHotEncoder", e.Cols, true); err != nil {
		return err
	}
	if e.NValues < 0 {
		return entity.InvalidConfig("oneHotEncoder: nValues must not be negative, got %d", e.NValues)
	}
	switch e.HandleUnknown {
	case "", HandleUnknownIgnore, HandleUnknownError:
	default:
		return entity.InvalidConfig("oneHotEncoder: unsupported handleUnknown %q", e.HandleUnknown)
	}
	return nil
}

func (e OneHotEncoder) Fit(f *entity.Frame, _ *entity.Column) (entity.Transformer, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	cols, err := columns(f, e.Cols)
	if err != nil {
		return nil, err
	}

	fitted := &FittedOneHotEncoder{
		Cols:          append([]string(nil), e.Cols...),
		Categories:    make([][]any, len(cols)),
		HandleUnknown: e.HandleUnknown,
		index:         make([]map[string]int, len(cols)),
		fitted:        true,
	}
	if fitted.HandleUnknown == "" {
		fitted.HandleUnknown = HandleUnknownIgnore
	}
	for i, c := range cols {
		if e.NValues > 0 {
			fitted.Categories[i], err = integerRange(c, e.NValues)
			if err != nil {
				return nil, err
			}
			fitted.index[i] = indexByKey(fitted.Categories[i])
			continue
		}
		fitted.Categories[i], fitted.index[i] = categories(c)
	}
	if err = checkOutputNames(f, e.Cols, fitted.OutputNames()); err != nil {
		return nil, err
	}
	return fitted, nil
}

// checkOutputNames fails if an indicator name is repeated, or taken by a column of f that is
// kept by Transform.
func checkOutputNames(f *entity.Frame, encoded, names []string) error {
	taken := make(map[string]bool, f.NumCols()+len(names))
	for _, name := range f.Names() {
		taken[name] = true
	}
	for _, col := range encoded {
		delete(taken, col)
	}
	for _, name := range names {
		if taken[name] {
			return entity.InvalidConfig("oneHotEncoder: indicator column %q is not unique", name)
		}
		taken[name] = true
	}
	return nil
}

func integerRange(c *entity.Column, n int) ([]any, error) {
	if !c.IsNumeric() {
		return nil, entity.TypeMismatch(c, "numeric (with nValues set)")
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Float(i)
		if v < 0 || v >= float64(n) || v != math.Trunc(v) {
			return nil, entity.InvalidConfig("oneHotEncoder: value %v in column %q outside range 0..%d", c.Value(i), c.Name, n-1)
		}
	}
	values := make([]any, n)
	for i := range values {
		values[i] = int64(i)
	}
	return values, nil
}

// FittedOneHotEncoder is the fitted state of OneHotEncoder.
type FittedOneHotEncoder struct {
	Cols          []string
	Categories    [][]any
	HandleUnknown string
	index         []map[string]int
	fitted        bool
}

// OutputNames returns the names of the indicator columns, in the order they are added.
func (t *FittedOneHotEncoder) OutputNames() []string {
	var names []string
	for i, col := range t.Cols {
		for _, category := range t.Categories[i] {
			names = append(names, col+"_"+entity.FormatValue(category))
		}
	}
	return names
}

func (t *FittedOneHotEncoder) Transform(f *entity.Frame) (*entity.Frame, error) {
	if t == nil || !t.fitted {
		return nil, entity.ErrNotFitted
	}
	out, err := f.Drop(t.Cols...)
	if err != nil {
		return nil, err
	}
	n := f.NumRows()
	for i, name := range t.Cols {
		c, _ := f.Column(name)
		indicators := make([][]float64, len(t.Categories[i]))
		for j := range indicators {
			indicators[j] = make([]float64, n)
		}
		for row := 0; row < n; row++ {
			if c.IsNull(row) {
				continue
			}
			j, ok := t.index[i][c.Key(row)]
			if !ok {
				if t.HandleUnknown == HandleUnknownError {
					return nil, fmt.Errorf("%w: value %q in column %q", entity.ErrUnknownCategory, entity.FormatValue(c.Value(row)), name)
				}
				continue
			}
			indicators[j][row] = 1
		}
		for j, category := range t.Categories[i] {
			indicator := name + "_" + entity.FormatValue(category)
			if _, taken := out.Index(indicator); taken {
				return nil, entity.InvalidConfig("oneHotEncoder: indicator column %q is not unique", indicator)
			}
			if err = out.Set(entity.NewFloatColumn(indicator, indicators[j])); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
