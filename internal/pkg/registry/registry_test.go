package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zpiroux/dsutils/entity"
	"github.com/zpiroux/dsutils/entity/preprocess"
	"github.com/zpiroux/dsutils/entity/transform"
)

type dropAll struct{}

func (dropAll) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) { return dropAll{}, nil }
func (dropAll) Transform(*entity.Frame) (*entity.Frame, error)                { return &entity.Frame{}, nil }

type dropAllFactory struct{ typeId string }

func (f dropAllFactory) TypeId() string { return f.typeId }
func (f dropAllFactory) NewEstimator([]byte) (entity.Estimator, error) {
	return dropAll{}, nil
}

func step(typ, config string) entity.Step {
	return entity.Step{Name: "s-" + typ, Type: typ, Config: json.RawMessage(config)}
}

func TestBuiltinTypes(t *testing.T) {
	r, err := New(nil, nil, false)
	require.NoError(t, err)
	assert.Len(t, r.Types(), 12)
	for _, typeId := range r.Types() {
		assert.True(t, IsBuiltin(typeId))
	}

	e, err := r.NewEstimator(step(TypeRatioColumnToConst, `{"col":"v1","const":2}`))
	require.NoError(t, err)
	assert.Equal(t, transform.RatioColumnToConst{Col: "v1", Const: 2}, e)

	e, err = r.NewEstimator(step(TypeOneHotEncoder, `{"cols":["c"],"handleUnknown":"error"}`))
	require.NoError(t, err)
	assert.Equal(t, preprocess.OneHotEncoder{Cols: []string{"c"}, HandleUnknown: "error"}, e)

	e, err = r.NewEstimator(step(TypeStandardizeFloatCols, ``))
	require.NoError(t, err)
	assert.Equal(t, preprocess.StandardizeFloatCols{}, e)

	e, err = r.NewEstimator(step(TypeDaysFromLaterToEarly, `{"start":"a","end":"b","featName":"gap"}`))
	require.NoError(t, err)
	assert.Equal(t, transform.DaysFromLaterToEarly{Start: "a", End: "b", FeatName: "gap"}, e)
}

func TestInvalidStepConfigs(t *testing.T) {
	r, err := New(nil, nil, false)
	require.NoError(t, err)

	_, err = r.NewEstimator(step("noSuchType", `{}`))
	assert.ErrorIs(t, err, ErrUnknownType)

	invalid := []entity.Step{
		step(TypeRatioColumnToConst, `{"col":"v1"}`),
		step(TypeRatioColumnToConst, `{"col":"v1","const":0}`),
		step(TypeSelectColumns, `{"cols":[]}`),
		step(TypeDayOfTheWeek, `{"col":"ts","bogus":1}`),
		step(TypeHourOfTheDay, `{"col":5}`),
		step(TypeRatioColumnToValue, `{"col":"v","func":"mode"}`),
		step(TypeOneHotEncoder, `{"cols":["c"],"handleUnknown":"drop"}`),
		step(TypeLabelEncodeColumns, `{}`),
	}
	for _, s := range invalid {
		_, err = r.NewEstimator(s)
		assert.Error(t, err, "step config: %s", s.Config)
	}

	_, err = r.NewEstimator(step(TypeRatioColumnToConst, `{"col":"v1","const":0}`))
	assert.ErrorIs(t, err, entity.ErrZeroDivisor)

	_, err = r.NewEstimator(step(TypeSelectColumns, `{"cols":[]}`))
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)

	emptyNames := []entity.Step{
		step(TypeDayOfTheWeek, `{"col":""}`),
		step(TypeHourOfTheDay, `{"col":""}`),
		step(TypeDaysFromLaterToEarly, `{"start":"a","end":""}`),
		step(TypeRatioBetweenColumns, `{"numer":"","denom":"b"}`),
		step(TypeRatioColumnToConst, `{"col":"","const":2}`),
		step(TypeRatioColumnToValue, `{"col":""}`),
		step(TypeUserAgentFeatures, `{"col":""}`),
		step(TypeStandardizeFloatCols, `{"cols":["a",""]}`),
		step(TypeLabelEncodeColumns, `{"cols":[""]}`),
	}
	for _, s := range emptyNames {
		_, err = r.NewEstimator(s)
		assert.ErrorIs(t, err, entity.ErrInvalidConfig, "step config: %s", s.Config)
	}

	// Empty optional names are fine
	_, err = r.NewEstimator(step(TypeDayOfTheWeek, `{"col":"ts","featName":""}`))
	assert.NoError(t, err)
}

func TestCustomTypes(t *testing.T) {
	ch := make(entity.NotifyChan, 8)
	r, err := New(entity.TransformerFactories{"dropAll": dropAllFactory{"dropAll"}}, ch, false)
	require.NoError(t, err)
	assert.Contains(t, r.Types(), "dropAll")

	e, err := r.NewEstimator(step("dropAll", ``))
	require.NoError(t, err)
	assert.Equal(t, dropAll{}, e)

	_, err = New(entity.TransformerFactories{TypeSelectColumns: dropAllFactory{TypeSelectColumns}}, nil, false)
	assert.Error(t, err)
}

func TestEstimators(t *testing.T) {
	r, err := New(nil, nil, false)
	require.NoError(t, err)

	spec, err := entity.NewSpec([]byte(`{
		"name": "orders", "version": 1,
		"steps": [
			{"type": "ratioColumnToConst", "config": {"col": "v1", "const": 2}},
			{"type": "removeConstantColumns"}
		]}`))
	require.NoError(t, err)

	estimators, err := r.Estimators(spec)
	require.NoError(t, err)
	require.Len(t, estimators, 2)
	assert.IsType(t, transform.RatioColumnToConst{}, estimators[0])
	assert.IsType(t, preprocess.RemoveConstantColumns{}, estimators[1])

	spec.Steps[1].Type = "nope"
	_, err = r.Estimators(spec)
	assert.True(t, errors.Is(err, ErrUnknownType))
}
