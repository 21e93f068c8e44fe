package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/teltech/logger"
	"github.com/zpiroux/dsutils/entity"
	"github.com/zpiroux/dsutils/pkg/notify"
)

var ErrUnknownType = errors.New("unknown transformer type")

// TransformerRegistry maps step types in pipeline specs to the factories creating their
// estimators. Built-in types are always registered.
type TransformerRegistry struct {
	factories entity.TransformerFactories
	notifier  *notify.Notifier
}

// New creates a registry with all built-in types plus the provided custom ones.
// Custom factories cannot override built-in types.
func New(custom entity.TransformerFactories, notifyChan entity.NotifyChan, logging bool) (*TransformerRegistry, error) {
	r := &TransformerRegistry{factories: BuiltinFactories()}

	var log *logger.Log
	if logging {
		log = logger.New()
	}
	r.notifier = notify.New(notifyChan, log, 0, notify.Source{Sender: "registry"})

	for typeId, factory := range custom {
		if IsBuiltin(typeId) {
			return nil, fmt.Errorf("custom transformer type %q conflicts with built-in type", typeId)
		}
		r.factories[typeId] = factory
		r.notifier.Notify(entity.NotifyLevelDebug, "registered custom transformer type %s", typeId)
	}
	return r, nil
}

// IsBuiltin reports if typeId is one of the built-in transformer types.
func IsBuiltin(typeId string) bool {
	_, ok := builtinTypes[typeId]
	return ok
}

var builtinTypes = BuiltinFactories()

// Types returns all registered types, sorted.
func (r *TransformerRegistry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for typeId := range r.factories {
		types = append(types, typeId)
	}
	sort.Strings(types)
	return types
}

// NewEstimator creates the unfitted estimator for a single spec step.
func (r *TransformerRegistry) NewEstimator(step entity.Step) (entity.Estimator, error) {
	factory, ok := r.factories[step.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q in step %s", ErrUnknownType, step.Type, step.Name)
	}
	e, err := factory.NewEstimator(step.Config)
	if err != nil {
		return nil, fmt.Errorf("invalid config in step %s: %w", step.Name, err)
	}
	if e == nil {
		return nil, fmt.Errorf("factory for type %q returned no estimator for step %s", step.Type, step.Name)
	}
	return e, nil
}

// Estimators creates the estimators for all steps in the spec, in order.
func (r *TransformerRegistry) Estimators(spec *entity.Spec) ([]entity.Estimator, error) {
	estimators := make([]entity.Estimator, len(spec.Steps))
	for i, step := range spec.Steps {
		e, err := r.NewEstimator(step)
		if err != nil {
			r.notifier.Notify(entity.NotifyLevelWarn, "spec %s rejected: %v", spec.Id(), err)
			return nil, err
		}
		estimators[i] = e
	}
	return estimators, nil
}
