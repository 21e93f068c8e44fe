package preprocess

import (
	"math"

	"github.com/zpiroux/dsutils/entity"
	"gonum.org/v1/gonum/stat"
)

// StandardizeFloatCols scales numeric columns to zero mean and unit variance, using the mean
// and population standard deviation learned in Fit. Missing values are ignored in Fit and stay
// missing in Transform. A column with zero deviation is only centered (scale 1).
//
// If Cols is empty, all float columns of the training frame are standardized.
// Transformed columns are float columns, kept at their original position.
type StandardizeFloatCols struct {
	Cols []string `json:"cols,omitempty"`
}

func (e StandardizeFloatCols) Fit(f *entity.Frame, _ *entity.Column) (entity.Transformer, error) {
	if err := validateCols("standardizeFloatCols", e.Cols, false); err != nil {
		return nil, err
	}
	cols, err := columns(f, e.Cols)
	if err != nil {
		return nil, err
	}

	fitted := &FittedStandardizeFloatCols{fitted: true}
	for _, c := range cols {
		if len(e.Cols) == 0 && c.Kind != entity.KindFloat {
			continue
		}
		if !c.IsNumeric() {
			return nil, entity.TypeMismatch(c, "numeric")
		}
		var values []float64
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				values = append(values, c.Float(i))
			}
		}
		mean, scale := math.NaN(), 1.0
		if len(values) > 0 {
			var variance float64
			mean, variance = stat.PopMeanVariance(values, nil)
			scale = math.Sqrt(variance)
			if isZeroScale(scale, mean) {
				scale = 1
			}
		}
		fitted.Cols = append(fitted.Cols, c.Name)
		fitted.Means = append(fitted.Means, mean)
		fitted.Scales = append(fitted.Scales, scale)
	}
	return fitted, nil
}

// isZeroScale reports if the deviation is zero, allowing for the rounding error of computing
// it for a constant column.
func isZeroScale(scale, mean float64) bool {
	const eps = 2.220446049250313e-16
	return scale == 0 || scale < 10*eps*math.Abs(mean)
}

// FittedStandardizeFloatCols is the fitted state of StandardizeFloatCols.
// A column whose training values were all missing has a NaN mean and is transformed to
// missing values only.
type FittedStandardizeFloatCols struct {
	Cols   []string
	Means  []float64
	Scales []float64
	fitted bool
}

func (t *FittedStandardizeFloatCols) Transform(f *entity.Frame) (*entity.Frame, error) {
	if t == nil || !t.fitted {
		return nil, entity.ErrNotFitted
	}
	if err := f.HasColumns(t.Cols...); err != nil {
		return nil, err
	}
	out := f.Copy()
	for i, name := range t.Cols {
		c, _ := f.Column(name)
		if !c.IsNumeric() {
			return nil, entity.TypeMismatch(c, "numeric")
		}
		scaled := make([]float64, c.Len())
		for row := range scaled {
			scaled[row] = (c.Float(row) - t.Means[i]) / t.Scales[i]
		}
		if err := out.Set(entity.NewFloatColumn(name, scaled)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
