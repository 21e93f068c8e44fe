package registry

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/zpiroux/dsutils/entity"
	"github.com/zpiroux/dsutils/entity/preprocess"
	"github.com/zpiroux/dsutils/entity/transform"
)

// Built-in transformer types, as used in the "type" field of pipeline spec steps.
const (
	TypeDayOfTheWeek          = "dayOfTheWeek"
	TypeHourOfTheDay          = "hourOfTheDay"
	TypeDaysFromLaterToEarly  = "daysFromLaterToEarly"
	TypeRatioBetweenColumns   = "ratioBetweenColumns"
	TypeRatioColumnToConst    = "ratioColumnToConst"
	TypeRatioColumnToValue    = "ratioColumnToValue"
	TypeSelectColumns         = "selectColumns"
	TypeUserAgentFeatures     = "userAgentFeatures"
	TypeOneHotEncoder         = "oneHotEncoder"
	TypeRemoveConstantColumns = "removeConstantColumns"
	TypeStandardizeFloatCols  = "standardizeFloatCols"
	TypeLabelEncodeColumns    = "labelEncodeColumns"
)

// configFactory creates estimators of type T by decoding the step config JSON into T.
type configFactory[T entity.Estimator] struct {
	typeId   string
	required []string
	validate func(T) error
}

func (f configFactory[T]) TypeId() string {
	return f.typeId
}

func (f configFactory[T]) NewEstimator(config []byte) (entity.Estimator, error) {
	var e T
	for _, field := range f.required {
		if !gjson.GetBytes(config, field).Exists() {
			return nil, entity.InvalidConfig("%s: missing required config field %q", f.typeId, field)
		}
	}
	if field, ok := emptyColumnName(config); ok {
		return nil, entity.InvalidConfig("%s: empty column name in config field %q", f.typeId, field)
	}
	if len(bytes.TrimSpace(config)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(config))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&e); err != nil {
			return nil, entity.InvalidConfig("%s: %v", f.typeId, err)
		}
	}
	if f.validate != nil {
		if err := f.validate(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// columnFields are the config fields of built-in types holding column names.
var columnFields = []string{"col", "cols", "start", "end", "numer", "denom"}

// emptyColumnName returns the first column field holding an empty name, alone or in a list.
func emptyColumnName(config []byte) (string, bool) {
	for _, field := range columnFields {
		v := gjson.GetBytes(config, field)
		names := []gjson.Result{v}
		if v.IsArray() {
			names = v.Array()
		}
		for _, name := range names {
			if name.Type == gjson.String && name.Str == "" {
				return field, true
			}
		}
	}
	return "", false
}

// BuiltinFactories returns the factories of all built-in transformer types.
func BuiltinFactories() entity.TransformerFactories {
	factories := make(entity.TransformerFactories)
	for _, f := range []entity.TransformerFactory{
		configFactory[transform.DayOfTheWeek]{typeId: TypeDayOfTheWeek, required: []string{"col"}},
		configFactory[transform.HourOfTheDay]{typeId: TypeHourOfTheDay, required: []string{"col"}},
		configFactory[transform.DaysFromLaterToEarly]{typeId: TypeDaysFromLaterToEarly, required: []string{"start", "end"}},
		configFactory[transform.RatioBetweenColumns]{typeId: TypeRatioBetweenColumns, required: []string{"numer", "denom"}},
		configFactory[transform.RatioColumnToConst]{
			typeId:   TypeRatioColumnToConst,
			required: []string{"col", "const"},
			validate: transform.RatioColumnToConst.Validate,
		},
		configFactory[transform.RatioColumnToValue]{
			typeId:   TypeRatioColumnToValue,
			required: []string{"col"},
			validate: validateRatioFunc,
		},
		configFactory[transform.SelectColumns]{
			typeId:   TypeSelectColumns,
			required: []string{"cols"},
			validate: transform.SelectColumns.Validate,
		},
		configFactory[transform.UserAgentFeatures]{typeId: TypeUserAgentFeatures, required: []string{"col"}},
		configFactory[preprocess.OneHotEncoder]{
			typeId:   TypeOneHotEncoder,
			required: []string{"cols"},
			validate: preprocess.OneHotEncoder.Validate,
		},
		configFactory[preprocess.RemoveConstantColumns]{typeId: TypeRemoveConstantColumns},
		configFactory[preprocess.StandardizeFloatCols]{typeId: TypeStandardizeFloatCols},
		configFactory[preprocess.LabelEncodeColumns]{typeId: TypeLabelEncodeColumns, required: []string{"cols"}},
	} {
		factories[f.TypeId()] = f
	}
	return factories
}

// Reducers can't be expressed in JSON, so only the named funcs are available in specs.
func validateRatioFunc(t transform.RatioColumnToValue) error {
	switch t.Func {
	case "", transform.FuncMean, transform.FuncMedian:
		return nil
	}
	return entity.InvalidConfig("%s: unsupported func %q", TypeRatioColumnToValue, t.Func)
}
