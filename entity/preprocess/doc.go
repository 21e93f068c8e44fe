/*
Package preprocess provides the stateful preprocessing transformers of dsutils.

Each transformer is configured with a plain struct implementing entity.Estimator. Fit learns the
state from a training frame and returns a separate fitted struct implementing entity.Transformer,
leaving the config struct untouched. Fitted structs not produced by Fit return entity.ErrNotFitted.

	enc := preprocess.OneHotEncoder{Cols: []string{"country"}}
	fitted, err := enc.Fit(train, nil)
	...
	out, err := fitted.Transform(test)
*/
package preprocess
