package dsutils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zpiroux/dsutils/entity"
	"github.com/zpiroux/dsutils/internal/pkg/registry"
	"github.com/zpiroux/dsutils/pkg/persist"
)

const (
	defaultNotifyChanSize   = 64
	defaultMetricsNamespace = "dsutils"
	envPrefix               = "DSUTILS_"
)

// Config needs to be created with NewConfig() or LoadConfig() and provided in calls to
// NewPipeline(). All config fields are optional. Custom transformer types are added with
// Config.RegisterTransformerType().
type Config struct {
	Ops     OpsConfig     `koanf:"ops"`
	Metrics MetricsConfig `koanf:"metrics"`
	Persist PersistConfig `koanf:"persist"`

	transformers entity.TransformerFactories
	notifyChan   entity.NotifyChan
}

// OpsConfig provide options for observability.
type OpsConfig struct {

	// Size of the notification channel buffer
	NotifyChanSize int `koanf:"notify_chan_size"`

	// If set to true native logging will be used (debug, info, warn, and error logs).
	// If set to false (default) no standard logging will be done, but the same type of
	// information will be provided on the notification channel, accessible with
	// Config.NotifyChannel().
	Log bool `koanf:"log"`
}

// MetricsConfig enables Prometheus metrics on pipeline step runs.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`

	// Registerer to register the metrics with. If nil prometheus.DefaultRegisterer is used.
	Registerer prometheus.Registerer `koanf:"-"`
}

// PersistConfig holds the defaults used by PersistFrame().
type PersistConfig struct {
	Dir    string `koanf:"dir"`
	Prefix string `koanf:"prefix"`
}

// NewConfig returns an initialized Config struct, required for NewPipeline().
func NewConfig() *Config {
	return &Config{
		Ops:          OpsConfig{NotifyChanSize: defaultNotifyChanSize},
		Metrics:      MetricsConfig{Namespace: defaultMetricsNamespace},
		Persist:      PersistConfig{Prefix: persist.DefaultPrefix},
		transformers: make(entity.TransformerFactories),
	}
}

// LoadConfig creates a config from a YAML file, with values overridden by environment variables
// prefixed with DSUTILS_, using double underscore as nesting separator, e.g. DSUTILS_OPS__LOG=true.
// A missing file is not an error, in which case only defaults and environment variables are used.
//
// Example file:
//
//	ops:
//	  log: true
//	  notify_chan_size: 64
//	metrics:
//	  enabled: true
//	  namespace: dsutils
//	persist:
//	  dir: /tmp/frames
//	  prefix: raw_df
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load config from environment: %w", err)
	}

	c := NewConfig()
	if err = k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// RegisterTransformerType is used to make a custom transformer type available for pipeline
// specs to use. This can only be done after NewConfig() or LoadConfig() and prior to creating
// pipelines with NewPipeline(). Built-in type ids cannot be used.
func (c *Config) RegisterTransformerType(factory entity.TransformerFactory) error {
	if c.transformers == nil {
		return ErrConfigNotInitialized
	}
	typeId := factory.TypeId()
	if typeId == "" || registry.IsBuiltin(typeId) {
		return errWithDetails(ErrInvalidTransformerId, fmt.Errorf("type id %q is reserved or empty", typeId))
	}
	c.transformers[typeId] = factory
	return nil
}

// NotifyChannel returns the channel on which all pipelines created with this config send
// notification events. Events are dropped if the channel buffer is full.
func (c *Config) NotifyChannel() entity.NotifyChan {
	if c.notifyChan == nil {
		c.notifyChan = make(entity.NotifyChan, c.Ops.NotifyChanSize)
	}
	return c.notifyChan
}
