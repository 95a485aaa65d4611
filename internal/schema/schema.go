// Package schema holds the configuration schema extensions plugins declare
// for function definitions, and validates descriptors against them.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/picklr-io/slsloop/internal/ir"
)

// Property constrains a single function attribute.
type Property struct {
	Type string   `json:"type"` // "string", "boolean", "integer", "number", "object", "array"
	Enum []string `json:"enum,omitempty"`
}

// Fragment declares new function attributes.
type Fragment struct {
	Properties map[string]Property `json:"properties"`
}

// Handler collects function property definitions per provider.
type Handler struct {
	mu        sync.RWMutex
	functions map[string]map[string]Property
	validate  *validator.Validate
}

func NewHandler() *Handler {
	return &Handler{
		functions: make(map[string]map[string]Property),
		validate:  validator.New(),
	}
}

// DefineFunctionProperties registers the attributes in fragment as accepted
// on function definitions of the given provider.
func (h *Handler) DefineFunctionProperties(provider string, fragment Fragment) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	defined, ok := h.functions[provider]
	if !ok {
		defined = make(map[string]Property)
		h.functions[provider] = defined
	}

	for name := range fragment.Properties {
		if _, exists := defined[name]; exists {
			return fmt.Errorf("function property %q already defined for provider %s", name, provider)
		}
	}
	for name, prop := range fragment.Properties {
		defined[name] = Property{Type: prop.Type, Enum: slices.Clone(prop.Enum)}
	}
	return nil
}

// FunctionProperties returns a copy of the properties defined for provider.
func (h *Handler) FunctionProperties(provider string) Fragment {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := Fragment{Properties: make(map[string]Property)}
	for name, prop := range h.functions[provider] {
		out.Properties[name] = Property{Type: prop.Type, Enum: slices.Clone(prop.Enum)}
	}
	return out
}

// Providers lists the providers with at least one defined property.
func (h *Handler) Providers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.functions))
}

// ValidateService checks every function of svc against the properties
// defined for its provider. It returns a *ValidationError listing all
// violations, or nil.
func (h *Handler) ValidateService(svc *ir.Service) error {
	props := h.FunctionProperties(svc.ProviderName())
	if len(props.Properties) == 0 {
		return nil
	}

	var violations []Violation
	for _, fnName := range slices.Sorted(maps.Keys(svc.Functions)) {
		fn := svc.Functions[fnName]
		if fn == nil {
			continue
		}
		for _, propName := range slices.Sorted(maps.Keys(props.Properties)) {
			value, ok := fn.Attribute(propName)
			if !ok {
				continue
			}
			prop := props.Properties[propName]
			if err := h.check(prop, value); err != nil {
				violations = append(violations, Violation{
					Function: fnName,
					Property: propName,
					Value:    value,
					Allowed:  slices.Clone(prop.Enum),
					Reason:   err.Error(),
				})
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func (h *Handler) check(prop Property, value any) error {
	if !matchesType(prop.Type, value) {
		return fmt.Errorf("must be of type %s", prop.Type)
	}
	if len(prop.Enum) == 0 {
		return nil
	}
	if err := h.validate.Var(value, "oneof="+oneOfParam(prop.Enum)); err != nil {
		return fmt.Errorf("must be equal to one of the allowed values [%s]", strings.Join(prop.Enum, ", "))
	}
	return nil
}

func matchesType(typ string, value any) bool {
	switch typ {
	case "", "any":
		return true
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int64, uint64:
			return true
		case float64:
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int64, uint64, float64:
			return true
		}
		return false
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	}
	return false
}

// oneOfParam renders enum literals as a validator "oneof" parameter,
// quoting literals that contain spaces.
func oneOfParam(enum []string) string {
	parts := make([]string, len(enum))
	for i, v := range enum {
		if strings.ContainsAny(v, " \t") {
			v = "'" + v + "'"
		}
		parts[i] = v
	}
	return strings.Join(parts, " ")
}
