package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zpiroux/dsutils/entity"
)

func numericFrame() *entity.Frame {
	return entity.MustNewFrame(
		entity.NewFloatColumn("price", []float64{10, 3, 0, -4, math.NaN()}),
		entity.NewIntColumn("qty", []int64{2, 0, 0, 0, 1}),
		entity.NewStringColumn("name", []string{"a", "b", "c", "d", "e"}),
	)
}

func TestRatioBetweenColumns(t *testing.T) {
	tr := RatioBetweenColumns{Numer: "price", Denom: "qty"}
	out, err := tr.Transform(numericFrame())
	require.NoError(t, err)

	ratio, err := out.Column("priceToqtyRatio")
	require.NoError(t, err)
	assert.Equal(t, entity.KindFloat, ratio.Kind)
	assert.Equal(t, 5.0, ratio.Floats[0])
	assert.True(t, math.IsInf(ratio.Floats[1], 1))
	assert.True(t, math.IsNaN(ratio.Floats[2]))
	assert.True(t, ratio.IsNull(2))
	assert.True(t, math.IsInf(ratio.Floats[3], -1))
	assert.True(t, ratio.IsNull(4))

	_, err = RatioBetweenColumns{Numer: "name", Denom: "qty"}.Transform(numericFrame())
	assert.ErrorIs(t, err, entity.ErrTypeMismatch)

	_, err = RatioBetweenColumns{Numer: "price", Denom: "missing"}.Transform(numericFrame())
	assert.ErrorIs(t, err, entity.ErrColumnNotFound)
}

func TestRatioColumnToConst(t *testing.T) {
	_, err := NewRatioColumnToConst("price", 0, "")
	assert.ErrorIs(t, err, entity.ErrZeroDivisor)

	tr, err := NewRatioColumnToConst("qty", 2, "")
	require.NoError(t, err)
	assert.Equal(t, "qtyTo2Ratio", tr.OutputName())

	f := numericFrame()
	out, err := tr.Transform(f)
	require.NoError(t, err)
	ratio, err := out.Column("qtyTo2Ratio")
	require.NoError(t, err)
	qty, _ := f.Column("qty")
	for i := 0; i < f.NumRows(); i++ {
		assert.Equal(t, float64(qty.Ints[i])/2, ratio.Floats[i])
	}

	// Zero value is never usable
	_, err = RatioColumnToConst{Col: "qty"}.Transform(f)
	assert.ErrorIs(t, err, entity.ErrZeroDivisor)

	tr, err = NewRatioColumnToConst("price", 0.5, "doubled")
	require.NoError(t, err)
	out, err = tr.Transform(f)
	require.NoError(t, err)
	doubled, err := out.Column("doubled")
	require.NoError(t, err)
	assert.Equal(t, 20.0, doubled.Floats[0])
}

func TestRatioColumnToValue(t *testing.T) {
	train := entity.MustNewFrame(entity.NewFloatColumn("v", []float64{1, 2, 3, 10, math.NaN()}))
	test := entity.MustNewFrame(entity.NewFloatColumn("v", []float64{4, 8}))

	fitted, err := RatioColumnToValue{Col: "v"}.Fit(train, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, fitted.(*FittedRatioColumnToValue).Value)

	out, err := fitted.Transform(test)
	require.NoError(t, err)
	ratio, err := out.Column("v_RatioTo_mean")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, ratio.Floats)

	fitted, err = RatioColumnToValue{Col: "v", Func: FuncMedian}.Fit(train, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.5, fitted.(*FittedRatioColumnToValue).Value)
	out, err = fitted.Transform(test)
	require.NoError(t, err)
	assert.NoError(t, out.HasColumns("v_RatioTo_median"))

	maxOf := func(values []float64) float64 {
		m := values[0]
		for _, v := range values {
			m = math.Max(m, v)
		}
		return m
	}
	fitted, err = RatioColumnToValue{Col: "v", Func: "max", Reducer: maxOf}.Fit(train, nil)
	require.NoError(t, err)
	out, err = fitted.Transform(test)
	require.NoError(t, err)
	ratio, err = out.Column("v_RatioTo_max")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0.8}, ratio.Floats)
}

func TestRatioColumnToValueErrors(t *testing.T) {
	zeroMean := entity.MustNewFrame(entity.NewFloatColumn("v", []float64{-1, 1}))
	_, err := RatioColumnToValue{Col: "v"}.Fit(zeroMean, nil)
	assert.ErrorIs(t, err, entity.ErrZeroDivisor)

	_, err = RatioColumnToValue{Col: "v", Func: "mode"}.Fit(zeroMean, nil)
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)

	_, err = RatioColumnToValue{Col: "w"}.Fit(zeroMean, nil)
	assert.ErrorIs(t, err, entity.ErrColumnNotFound)

	var notFitted FittedRatioColumnToValue
	_, err = notFitted.Transform(zeroMean)
	assert.ErrorIs(t, err, entity.ErrNotFitted)
}

func TestRatioFitIsIdempotent(t *testing.T) {
	train := entity.MustNewFrame(entity.NewFloatColumn("v", []float64{1, 2, 3, 4}))
	tr := RatioColumnToValue{Col: "v", Func: FuncMedian}
	first, err := tr.Fit(train, nil)
	require.NoError(t, err)
	second, err := tr.Fit(train, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
