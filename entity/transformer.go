package entity

// Transformer is implemented by all transformation steps ready to be applied to a frame,
// i.e. stateless transformers and fitted stateful ones.
// Transform must not modify the provided frame and returns either a complete new frame or
// an error, never a partial result.
type Transformer interface {
	Transform(f *Frame) (*Frame, error)
}

// Estimator is implemented by all transformation step configs. Fit learns the state needed
// from the provided (training) frame and returns a Transformer holding that state.
// The Estimator itself is never modified by Fit, so calling Fit repeatedly with the same
// data gives equal Transformers.
// Labels are optional (nil) and only used by supervised steps.
//
// Stateless transformers implement both interfaces, where Fit simply returns the receiver.
type Estimator interface {
	Fit(f *Frame, labels *Column) (Transformer, error)
}

// FitTransform is a convenience func for fitting e on f and transforming f with the result.
func FitTransform(e Estimator, f *Frame, labels *Column) (*Frame, Transformer, error) {
	t, err := e.Fit(f, labels)
	if err != nil {
		return nil, nil, err
	}
	out, err := t.Transform(f)
	if err != nil {
		return nil, nil, err
	}
	return out, t, nil
}

type TransformerFactories map[string]TransformerFactory

// TransformerFactory enables transformer types to be used as steps in pipeline specs.
// Built-in types are registered internally, while custom ones are registered with
// dsutils.Config.RegisterTransformerType().
type TransformerFactory interface {
	// TypeId returns the step type (as used in the "type" field of pipeline spec steps)
	// for which the factory creates estimators.
	TypeId() string

	// NewEstimator creates a new, unfitted, step from the raw JSON "config" object of the
	// spec step. The config data can be empty if omitted in the spec.
	NewEstimator(config []byte) (Estimator, error)
}
