// Package pipeline runs ordered sequences of transformers, as specified in pipeline specs.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teltech/logger"
	"github.com/zpiroux/dsutils/entity"
	"github.com/zpiroux/dsutils/pkg/notify"
)

type Config struct {
	NotifyChan entity.NotifyChan
	Log        bool

	// Metrics is optional.
	Metrics *Metrics
}

// Step is a named estimator in a pipeline.
type Step struct {
	Name      string
	Estimator entity.Estimator
}

// Pipeline is an unfitted sequence of steps. It implements entity.Estimator, so pipelines can
// be nested as steps in other pipelines.
type Pipeline struct {
	id       string
	instance string
	steps    []Step
	metrics  *Metrics
	notifier *notify.Notifier
}

// New creates a pipeline with the provided id (normally the spec id) and steps.
func New(config Config, id string, steps []Step) *Pipeline {
	p := &Pipeline{
		id:       id,
		instance: uuid.New().String(),
		steps:    steps,
		metrics:  config.Metrics,
	}
	var log *logger.Log
	if config.Log {
		log = logger.New()
	}
	p.notifier = notify.New(config.NotifyChan, log, 0, notify.Source{Sender: "pipeline", Instance: p.instance, Pipeline: id})
	return p
}

// FromSpec creates a pipeline from a spec and its estimators, one per spec step.
func FromSpec(config Config, spec *entity.Spec, estimators []entity.Estimator) (*Pipeline, error) {
	if len(spec.Steps) != len(estimators) {
		return nil, fmt.Errorf("spec %s has %d steps but %d estimators provided", spec.Id(), len(spec.Steps), len(estimators))
	}
	steps := make([]Step, len(estimators))
	for i, e := range estimators {
		steps[i] = Step{Name: spec.Steps[i].Name, Estimator: e}
	}
	return New(config, spec.Id(), steps), nil
}

func (p *Pipeline) Id() string {
	return p.id
}

// Instance returns the unique id of this pipeline instance, as used in notifications.
func (p *Pipeline) Instance() string {
	return p.instance
}

func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Fit fits each step in order, on the output of the previous fitted step, and returns the
// fitted pipeline. Labels are passed to every step.
func (p *Pipeline) Fit(f *entity.Frame, labels *entity.Column) (entity.Transformer, error) {
	fitted, _, err := p.fit(f, labels, false)
	if err != nil {
		return nil, err
	}
	return fitted, nil
}

// FitTransform is like Fit but also returns the frame transformed by all fitted steps.
func (p *Pipeline) FitTransform(f *entity.Frame, labels *entity.Column) (*entity.Frame, *Fitted, error) {
	fitted, out, err := p.fit(f, labels, true)
	return out, fitted, err
}

func (p *Pipeline) fit(f *entity.Frame, labels *entity.Column, keepOutput bool) (*Fitted, *entity.Frame, error) {
	if f == nil {
		return nil, nil, fmt.Errorf("%w: no frame to fit on", entity.ErrInvalidFrame)
	}
	p.notifier.Notify(entity.NotifyLevelDebug, "fitting %d steps on frame with %d rows", len(p.steps), f.NumRows())

	fitted := &Fitted{pipeline: p, transformers: make([]entity.Transformer, len(p.steps))}
	current := f
	for i, step := range p.steps {
		start := time.Now()
		t, err := step.Estimator.Fit(current, labels)
		p.metrics.observe(p.id, step.Name, PhaseFit, time.Since(start).Seconds(), current.NumRows(), err)
		if err != nil {
			return nil, nil, p.stepError(step, PhaseFit, err)
		}
		fitted.transformers[i] = t
		p.notifier.NotifyStep(entity.NotifyLevelDebug, step.Name, PhaseFit, "fitted in %s", time.Since(start))

		// The last step's output is only needed by FitTransform
		if i == len(p.steps)-1 && !keepOutput {
			break
		}
		if current, err = p.transformStep(step, t, current); err != nil {
			return nil, nil, err
		}
	}
	p.notifier.Notify(entity.NotifyLevelInfo, "pipeline fitted with %d steps", len(p.steps))
	if keepOutput && current == f {
		current = f.Copy()
	}
	return fitted, current, nil
}

// Transform transforms the frame with an unfitted pipeline, which is only possible when all
// steps are stateless. Otherwise entity.ErrNotFitted is returned.
func (p *Pipeline) Transform(f *entity.Frame) (*entity.Frame, error) {
	transformers := make([]entity.Transformer, len(p.steps))
	for i, step := range p.steps {
		t, ok := step.Estimator.(entity.Transformer)
		if !ok {
			return nil, fmt.Errorf("%w: step %s in pipeline %s", entity.ErrNotFitted, step.Name, p.id)
		}
		transformers[i] = t
	}
	return p.transform(f, transformers)
}

func (p *Pipeline) transform(f *entity.Frame, transformers []entity.Transformer) (*entity.Frame, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: no frame to transform", entity.ErrInvalidFrame)
	}
	if len(transformers) == 0 {
		return f.Copy(), nil
	}
	var err error
	current := f
	for i, t := range transformers {
		if current, err = p.transformStep(p.steps[i], t, current); err != nil {
			return nil, err
		}
	}
	return current, nil
}

func (p *Pipeline) transformStep(step Step, t entity.Transformer, f *entity.Frame) (*entity.Frame, error) {
	start := time.Now()
	out, err := t.Transform(f)
	p.metrics.observe(p.id, step.Name, PhaseTransform, time.Since(start).Seconds(), f.NumRows(), err)
	if err != nil {
		return nil, p.stepError(step, PhaseTransform, err)
	}
	if out == nil {
		return nil, p.stepError(step, PhaseTransform, fmt.Errorf("%w: step returned no frame", entity.ErrInvalidFrame))
	}
	return out, nil
}

func (p *Pipeline) stepError(step Step, phase string, err error) error {
	p.notifier.NotifyStep(entity.NotifyLevelWarn, step.Name, phase, "failed: %v", err)
	return fmt.Errorf("%s of step %s in pipeline %s failed: %w", phase, step.Name, p.id, err)
}

// Fitted is a pipeline with all steps fitted.
type Fitted struct {
	pipeline     *Pipeline
	transformers []entity.Transformer
}

// Transform transforms the frame with each fitted step in order.
func (fp *Fitted) Transform(f *entity.Frame) (*entity.Frame, error) {
	if fp == nil || fp.pipeline == nil {
		return nil, entity.ErrNotFitted
	}
	return fp.pipeline.transform(f, fp.transformers)
}

// Transformers returns the fitted step transformers, in step order.
func (fp *Fitted) Transformers() []entity.Transformer {
	return fp.transformers
}

func (fp *Fitted) Pipeline() *Pipeline {
	return fp.pipeline
}
