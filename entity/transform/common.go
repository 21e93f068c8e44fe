package transform

import (
	"github.com/zpiroux/dsutils/entity"
)

// withColumn returns a copy of f with c added (or replaced, if already present).
func withColumn(f *entity.Frame, c *entity.Column) (*entity.Frame, error) {
	out := f.Copy()
	if err := out.Set(c); err != nil {
		return nil, err
	}
	return out, nil
}

func columnOfKind(f *entity.Frame, name string, kind entity.Kind) (*entity.Column, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, entity.TypeMismatch(c, kind.String())
	}
	return c, nil
}

func numericColumn(f *entity.Frame, name string) (*entity.Column, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.IsNumeric() {
		return nil, entity.TypeMismatch(c, "numeric")
	}
	return c, nil
}

// nullMask returns the missing value mask of all provided columns combined, or nil if no
// value is missing.
func nullMask(n int, cols ...*entity.Column) []bool {
	var mask []bool
	for i := 0; i < n; i++ {
		for _, c := range cols {
			if c.IsNull(i) {
				if mask == nil {
					mask = make([]bool, n)
				}
				mask[i] = true
				break
			}
		}
	}
	return mask
}

func featName(name, defaultName string) string {
	if name != "" {
		return name
	}
	return defaultName
}
