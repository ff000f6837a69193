package dashboard

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// ErrCustomRangeStart is returned when a CUSTOM feedback range has no valid start date.
var ErrCustomRangeStart = errors.New("dashboard: range CUSTOM requires a calendar custom_start")

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// JSONSchemaValidator checks widget configuration against the definition
// schema, then applies the feedback range rules the schema cannot express.
// Compiled schemas are cached per code and schema content, so a manifest that
// redefines a widget gets its new schema.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the widget schema.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload, err := normalizeConfig(def.Code, config)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: configuration for %s failed validation: %w", def.Code, err)
	}
	if err := checkCustomRange(payload); err != nil {
		return fmt.Errorf("%w (widget %s)", err, def.Code)
	}
	return nil
}

// normalizeConfig round-trips through JSON so Go ints and typed slices reach
// the schema as JSON numbers and arrays.
func normalizeConfig(code string, config map[string]any) (map[string]any, error) {
	if config == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal config for %s: %w", code, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("dashboard: normalize config for %s: %w", code, err)
	}
	return payload, nil
}

func checkCustomRange(payload map[string]any) error {
	start, hasStart := payload["custom_start"].(string)
	if hasStart {
		if _, err := time.Parse("2006-01-02", start); err != nil {
			return ErrCustomRangeStart
		}
	}
	if key, _ := payload["range"].(string); hub.RangeKey(key) == hub.RangeCustom && !hasStart {
		return ErrCustomRangeStart
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	sum := sha1.Sum(data)
	key := def.Code + "@" + hex.EncodeToString(sum[:8])

	v.mu.RLock()
	schema, ok := v.compiled[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	compiler := jsonschema.NewCompiler()
	name := key + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[key] = compiled
	v.mu.Unlock()
	return compiled, nil
}
