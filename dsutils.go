package dsutils

import (
	"errors"
	"fmt"

	"github.com/zpiroux/dsutils/entity"
	"github.com/zpiroux/dsutils/internal/pkg/pipeline"
	"github.com/zpiroux/dsutils/internal/pkg/registry"
	"github.com/zpiroux/dsutils/pkg/persist"
)

// Error values returned by dsutils API.
// Many of these errors will also contain additional details about the error.
// Error matching can still be done with 'if errors.Is(err, ErrInvalidPipelineSpec)' etc.
// due to error wrapping. Errors from the transformers (see entity package) are wrapped as well.
var (
	ErrConfigNotInitialized   = errors.New("dsutils.Config need to be created with NewConfig()")
	ErrInvalidPipelineSpec    = errors.New("pipeline specification is not valid")
	ErrInvalidTransformerId   = errors.New("invalid transformer type id")
	ErrUnknownTransformerType = errors.New("unknown transformer type")
)

// Pipeline is a sequence of transformation steps created from a pipeline spec.
type Pipeline struct {
	spec     *entity.Spec
	pipeline *pipeline.Pipeline
}

// FittedPipeline is a Pipeline with all steps fitted, as returned by Pipeline.Fit().
type FittedPipeline struct {
	spec   *entity.Spec
	fitted *pipeline.Fitted
}

// NewPipeline creates a pipeline from the JSON pipeline spec, with step types resolved from
// built-in and registered custom transformer types.
func NewPipeline(config *Config, specData []byte) (*Pipeline, error) {
	spec, estimators, err := newSteps(config, specData)
	if err != nil {
		return nil, err
	}

	pc := pipeline.Config{NotifyChan: config.NotifyChannel(), Log: config.Ops.Log}
	if config.Metrics.Enabled {
		if pc.Metrics, err = pipeline.NewMetrics(config.Metrics.Namespace, config.Metrics.Registerer); err != nil {
			return nil, fmt.Errorf("could not set up metrics: %w", err)
		}
	}
	p, err := pipeline.FromSpec(pc, spec, estimators)
	if err != nil {
		return nil, errWithDetails(ErrInvalidPipelineSpec, err)
	}
	return &Pipeline{spec: spec, pipeline: p}, nil
}

// ValidatePipelineSpec returns an error if the provided pipeline spec is invalid, including
// the configs of all its steps. If valid, the spec id is returned.
func ValidatePipelineSpec(config *Config, specData []byte) (specId string, err error) {
	spec, _, err := newSteps(config, specData)
	if err != nil {
		return specId, err
	}
	return spec.Id(), nil
}

func newSteps(config *Config, specData []byte) (*entity.Spec, []entity.Estimator, error) {
	if config == nil || config.transformers == nil {
		return nil, nil, ErrConfigNotInitialized
	}
	spec, err := entity.NewSpec(specData)
	if err != nil {
		return nil, nil, errWithDetails(ErrInvalidPipelineSpec, err)
	}
	reg, err := registry.New(config.transformers, config.NotifyChannel(), config.Ops.Log)
	if err != nil {
		return nil, nil, errWithDetails(ErrInvalidTransformerId, err)
	}
	estimators, err := reg.Estimators(spec)
	if errors.Is(err, registry.ErrUnknownType) {
		return nil, nil, errWithDetails(ErrUnknownTransformerType, err)
	}
	if err != nil {
		return nil, nil, errWithDetails(ErrInvalidPipelineSpec, err)
	}
	return spec, estimators, nil
}

// Id returns the spec id of the pipeline, on the form "<name>-v<version>".
func (p *Pipeline) Id() string {
	return p.spec.Id()
}

func (p *Pipeline) Spec() *entity.Spec {
	return p.spec
}

// Fit fits all steps in order, each one on the output of the previous fitted step.
// Labels are optional (nil).
func (p *Pipeline) Fit(f *entity.Frame, labels *entity.Column) (*FittedPipeline, error) {
	t, err := p.pipeline.Fit(f, labels)
	if err != nil {
		return nil, err
	}
	return &FittedPipeline{spec: p.spec, fitted: t.(*pipeline.Fitted)}, nil
}

// FitTransform fits the pipeline and returns the training frame transformed by it.
func (p *Pipeline) FitTransform(f *entity.Frame, labels *entity.Column) (*entity.Frame, *FittedPipeline, error) {
	out, fitted, err := p.pipeline.FitTransform(f, labels)
	if err != nil {
		return nil, nil, err
	}
	return out, &FittedPipeline{spec: p.spec, fitted: fitted}, nil
}

// Transform transforms the frame without fitting, which is only possible if all steps are
// stateless. Otherwise an entity.ErrNotFitted error is returned.
func (p *Pipeline) Transform(f *entity.Frame) (*entity.Frame, error) {
	return p.pipeline.Transform(f)
}

func (fp *FittedPipeline) Id() string {
	return fp.spec.Id()
}

// Transform transforms the frame with all fitted steps in order.
func (fp *FittedPipeline) Transform(f *entity.Frame) (*entity.Frame, error) {
	if fp == nil || fp.fitted == nil {
		return nil, entity.ErrNotFitted
	}
	return fp.fitted.Transform(f)
}

// PersistFrame stores the frame with persist.Frame(), using the directory and file name prefix
// from config. The SQL producing the frame is optional. The base path of the stored files is
// returned.
func PersistFrame(config *Config, f *entity.Frame, sql string) (string, error) {
	if config == nil || config.transformers == nil {
		return "", ErrConfigNotInitialized
	}
	return persist.Frame(f, persist.Options{Dir: config.Persist.Dir, Prefix: config.Persist.Prefix, SQL: sql})
}

func errWithDetails(err error, errDetails error) error {
	return fmt.Errorf("%w, details: %w", err, errDetails)
}
