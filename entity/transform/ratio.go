package transform

import (
	"fmt"
	"math"
	"sort"

	"github.com/zpiroux/dsutils/entity"
	"gonum.org/v1/gonum/stat"
)

// RatioBetweenColumns adds Numer / Denom as a float column. Division follows IEEE 754, so a zero
// denominator gives +Inf or -Inf, and 0/0 gives NaN (i.e. a missing value). A missing operand gives
// a missing value.
type RatioBetweenColumns struct {
	Numer    string `json:"numer"`
	Denom    string `json:"denom"`
	FeatName string `json:"featName,omitempty"`
}

func (t RatioBetweenColumns) OutputName() string {
	return featName(t.FeatName, t.Numer+"To"+t.Denom+"Ratio")
}

func (t RatioBetweenColumns) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) {
	return t, nil
}

func (t RatioBetweenColumns) Transform(f *entity.Frame) (*entity.Frame, error) {
	if err := f.HasColumns(t.Numer, t.Denom); err != nil {
		return nil, err
	}
	numer, err := numericColumn(f, t.Numer)
	if err != nil {
		return nil, err
	}
	denom, err := numericColumn(f, t.Denom)
	if err != nil {
		return nil, err
	}
	ratios := make([]float64, numer.Len())
	for i := range ratios {
		ratios[i] = numer.Float(i) / denom.Float(i)
	}
	return withColumn(f, entity.NewFloatColumn(t.OutputName(), ratios))
}

// RatioColumnToConst adds Col / Const as a float column. Use NewRatioColumnToConst to have the
// divisor checked at construction.
type RatioColumnToConst struct {
	Col      string  `json:"col"`
	Const    float64 `json:"const"`
	FeatName string  `json:"featName,omitempty"`
}

func NewRatioColumnToConst(col string, divisor float64, featName string) (RatioColumnToConst, error) {
	t := RatioColumnToConst{Col: col, Const: divisor, FeatName: featName}
	return t, t.Validate()
}

func (t RatioColumnToConst) Validate() error {
	if t.Col == "" {
		return entity.InvalidConfig("ratioColumnToConst: col is required")
	}
	if t.Const == 0 || math.IsNaN(t.Const) {
		return fmt.Errorf("%w: ratioColumnToConst with const %v", entity.ErrZeroDivisor, t.Const)
	}
	return nil
}

func (t RatioColumnToConst) OutputName() string {
	return featName(t.FeatName, t.Col+"To"+entity.FormatValue(t.Const)+"Ratio")
}

func (t RatioColumnToConst) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) {
	return t, t.Validate()
}

func (t RatioColumnToConst) Transform(f *entity.Frame) (*entity.Frame, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c, err := numericColumn(f, t.Col)
	if err != nil {
		return nil, err
	}
	ratios := make([]float64, c.Len())
	for i := range ratios {
		ratios[i] = c.Float(i) / t.Const
	}
	return withColumn(f, entity.NewFloatColumn(t.OutputName(), ratios))
}

// Reducer computes a single value from the non-missing values of a column.
type Reducer func(values []float64) float64

const (
	FuncMean   = "mean"
	FuncMedian = "median"
)

// RatioColumnToValue adds Col divided by a value learned in Fit from the same column of the
// training frame. Func selects how the value is computed: "mean" (default) or "median". A custom
// Reducer can be provided instead, in which case Func only names it in the default output name.
type RatioColumnToValue struct {
	Col      string  `json:"col"`
	Func     string  `json:"func,omitempty"`
	Reducer  Reducer `json:"-"`
	FeatName string  `json:"featName,omitempty"`
}

func (t RatioColumnToValue) funcName() string {
	switch {
	case t.Func != "":
		return t.Func
	case t.Reducer != nil:
		return "custom"
	}
	return FuncMean
}

func (t RatioColumnToValue) OutputName() string {
	return featName(t.FeatName, t.Col+"_RatioTo_"+t.funcName())
}

func (t RatioColumnToValue) reducer() (Reducer, error) {
	if t.Reducer != nil {
		return t.Reducer, nil
	}
	switch t.funcName() {
	case FuncMean:
		return func(values []float64) float64 { return stat.Mean(values, nil) }, nil
	case FuncMedian:
		return median, nil
	}
	return nil, entity.InvalidConfig("ratioColumnToValue: unsupported func %q", t.Func)
}

func (t RatioColumnToValue) Fit(f *entity.Frame, _ *entity.Column) (entity.Transformer, error) {
	reduce, err := t.reducer()
	if err != nil {
		return nil, err
	}
	c, err := numericColumn(f, t.Col)
	if err != nil {
		return nil, err
	}
	var values []float64
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			values = append(values, c.Float(i))
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values in column %q to learn %s from", entity.ErrInvalidFrame, t.Col, t.funcName())
	}
	value := reduce(values)
	if value == 0 || math.IsNaN(value) {
		return nil, fmt.Errorf("%w: learned %s of column %q is %v", entity.ErrZeroDivisor, t.funcName(), t.Col, value)
	}
	return &FittedRatioColumnToValue{Col: t.Col, FeatName: t.OutputName(), Value: value, fitted: true}, nil
}

// FittedRatioColumnToValue is the fitted state of RatioColumnToValue.
type FittedRatioColumnToValue struct {
	Col      string
	FeatName string
	Value    float64
	fitted   bool
}

func (t *FittedRatioColumnToValue) Transform(f *entity.Frame) (*entity.Frame, error) {
	if t == nil || !t.fitted {
		return nil, entity.ErrNotFitted
	}
	c, err := numericColumn(f, t.Col)
	if err != nil {
		return nil, err
	}
	ratios := make([]float64, c.Len())
	for i := range ratios {
		ratios[i] = c.Float(i) / t.Value
	}
	return withColumn(f, entity.NewFloatColumn(t.FeatName, ratios))
}

// median returns the middle value, or the mean of the two middle values for an even count.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
