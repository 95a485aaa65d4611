// Package recursiveloop adds a per-function recursiveLoop setting to the
// service descriptor and copies it onto the RecursiveLoop property of each
// compiled Lambda function resource.
//
// Accepted values are "Allow" and "Terminate", matched exactly. Any other
// value is dropped without error; strict checking is left to the host's
// schema validation, which the plugin feeds when the host supports it.
package recursiveloop

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/picklr-io/slsloop/internal/ir"
	"github.com/picklr-io/slsloop/internal/lifecycle"
	"github.com/picklr-io/slsloop/internal/logging"
	"github.com/picklr-io/slsloop/internal/naming"
	"github.com/picklr-io/slsloop/internal/schema"
)

const (
	// Name identifies the plugin in the host's registry.
	Name = "recursive-loop"

	// ProviderName is the provider the schema extension is declared for.
	ProviderName = "aws"

	// FunctionAttribute is the descriptor key on function definitions.
	FunctionAttribute = "recursiveLoop"

	// ResourceProperty is the template property written on the function resource.
	ResourceProperty = "RecursiveLoop"
)

// ErrResourceNotFound is returned when a function carrying a setting has no
// compiled resource.
var ErrResourceNotFound = errors.New("compiled function resource not found")

// SchemaDefiner is the host's optional schema extension capability.
type SchemaDefiner interface {
	DefineFunctionProperties(provider string, fragment schema.Fragment) error
}

// Options carries the host dependencies of the plugin.
type Options struct {
	Service *ir.Service
	Naming  naming.Resolver
	Schema  SchemaDefiner // Optional
}

// Plugin is the recursive loop annotator.
type Plugin struct {
	service *ir.Service
	naming  naming.Resolver
}

// New creates the plugin and, when the host exposes a schema handler,
// declares the recursiveLoop function attribute.
func New(opts Options) (*Plugin, error) {
	if opts.Service == nil {
		return nil, errors.New("recursiveloop: service is required")
	}
	if opts.Naming == nil {
		return nil, errors.New("recursiveloop: naming resolver is required")
	}

	if opts.Schema != nil {
		if err := opts.Schema.DefineFunctionProperties(ProviderName, SchemaFragment()); err != nil {
			return nil, fmt.Errorf("failed to define %s function property: %w", FunctionAttribute, err)
		}
	}

	return &Plugin{
		service: opts.Service,
		naming:  opts.Naming,
	}, nil
}

// Hooks binds Apply to the functions-compiled event.
func (p *Plugin) Hooks() map[string]lifecycle.Hook {
	return map[string]lifecycle.Hook{
		lifecycle.EventCompileFunctions: p.Apply,
	}
}

// Apply copies every accepted recursiveLoop setting onto its function's
// compiled resource.
func (p *Plugin) Apply() error {
	var tpl *ir.Template
	if p.service.Provider != nil {
		tpl = p.service.Provider.CompiledTemplate
	}

	for _, fnName := range slices.Sorted(maps.Keys(p.service.Functions)) {
		fn := p.service.Functions[fnName]
		if fn == nil || fn.RecursiveLoop == nil {
			continue
		}

		value := *fn.RecursiveLoop
		if !IsAccepted(value) {
			logging.Debug("ignoring unsupported recursiveLoop value", "function", fnName, "value", value)
			continue
		}

		logicalID := p.naming.LambdaLogicalID(fnName)
		res, ok := tpl.Resource(logicalID)
		if !ok {
			return fmt.Errorf("function %s: %w: %s", fnName, ErrResourceNotFound, logicalID)
		}
		res.SetProperty(ResourceProperty, value)
		logging.Debug("set recursive loop", "function", fnName, "resource", logicalID, "value", value)
	}

	return nil
}

// AcceptedValues returns the values Lambda accepts for RecursiveLoop.
func AcceptedValues() []string {
	loops := types.RecursiveLoop("").Values()
	out := make([]string, len(loops))
	for i, v := range loops {
		out[i] = string(v)
	}
	return out
}

// IsAccepted reports whether v is exactly one of the accepted values.
func IsAccepted(v string) bool {
	return slices.Contains(AcceptedValues(), v)
}

// SchemaFragment declares recursiveLoop as an enumerated string.
func SchemaFragment() schema.Fragment {
	return schema.Fragment{
		Properties: map[string]schema.Property{
			FunctionAttribute: {
				Type: "string",
				Enum: AcceptedValues(),
			},
		},
	}
}
