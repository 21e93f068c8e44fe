package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/xeipuuv/gojsonschema"
)

// Spec specifies a transformation pipeline as an ordered list of steps, each one referring
// to a registered transformer type and its config.
// Specs are created from JSON with NewSpec(), e.g.:
//
//	{
//	  "name": "orders",
//	  "version": 1,
//	  "description": "order features",
//	  "steps": [
//	    { "type": "ratioColumnToConst", "config": { "col": "v1", "const": 2 } },
//	    { "type": "standardizeFloatCols", "config": { "cols": ["v1", "v2"] } }
//	  ]
//	}
type Spec struct {
	Name        string `json:"name"`
	Version     int    `json:"version"`
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps"`
}

// Step is a single transformation step in a pipeline Spec.
type Step struct {
	// Name is optional and only used in logs, notifications and metrics. If omitted
	// it is set to "<index>-<type>".
	Name string `json:"name,omitempty"`

	// Type is the id of the transformer type, as returned by its TransformerFactory.
	Type string `json:"type"`

	// Config is passed as is to the TransformerFactory of the step type.
	Config json.RawMessage `json:"config,omitempty"`
}

// NewSpec creates a new Spec from JSON and validates it both against the JSON schema and
// for semantic correctness. Step configs are validated by the registry when the pipeline is
// created.
func NewSpec(specData []byte) (*Spec, error) {
	var spec Spec
	if len(specData) == 0 {
		return nil, errors.New("no spec data provided")
	}

	if err := validateRawJson(specData); err != nil {
		return nil, err
	}

	err := json.Unmarshal(specData, &spec)
	if err == nil {
		spec.EnsureValidDefaults()
		err = spec.Validate()
	}
	return &spec, err
}

func (s *Spec) Id() string {
	return s.Name + "-v" + strconv.Itoa(s.Version)
}

func (s *Spec) EnsureValidDefaults() {
	for i := range s.Steps {
		if s.Steps[i].Name == "" {
			s.Steps[i].Name = strconv.Itoa(i) + "-" + s.Steps[i].Type
		}
	}
}

// Validate checks constraints not possible to express in the JSON schema.
func (s *Spec) Validate() error {
	names := make(map[string]bool, len(s.Steps))
	for _, step := range s.Steps {
		if names[step.Name] {
			return fmt.Errorf("duplicate step name %q in spec %s", step.Name, s.Id())
		}
		names[step.Name] = true
	}
	return nil
}

func (s *Spec) JSON() []byte {
	specData, _ := json.Marshal(s)
	return specData
}

func validateRawJson(specData []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(specSchema)
	documentLoader := gojsonschema.NewBytesLoader(specData)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		specErrors := ""
		for _, desc := range result.Errors() {
			specErrors += " - " + desc.String()
		}
		err = errors.New(specErrors)
	}
	return err
}

var specSchema = []byte(`
{
  "$schema": "http://json-schema.org/draft-07/schema",
  "type": "object",
  "required": [
    "name",
    "version",
    "steps"
  ],
  "properties": {
    "name": {
      "type": "string",
      "minLength": 1
    },
    "version": {
      "type": "integer",
      "minimum": 0
    },
    "description": {
      "type": "string"
    },
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": [
          "type"
        ],
        "properties": {
          "name": {
            "type": "string"
          },
          "type": {
            "type": "string",
            "minLength": 1
          },
          "config": {
            "type": "object"
          }
        },
        "additionalProperties": false
      }
    }
  }
}
`)
