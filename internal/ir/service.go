package ir

import "gopkg.in/yaml.v3"

// Service represents a serverless application descriptor.
type Service struct {
	Name      string               `yaml:"service" pkl:"service"`
	Provider  *Provider            `yaml:"provider" pkl:"provider"`
	Functions map[string]*Function `yaml:"functions" pkl:"functions"`
}

// Provider holds the provider section of the descriptor and the template
// compiled for it.
type Provider struct {
	Name    string `yaml:"name" pkl:"name"`
	Runtime string `yaml:"runtime,omitempty" pkl:"runtime"`
	Stage   string `yaml:"stage,omitempty" pkl:"stage"`
	Region  string `yaml:"region,omitempty" pkl:"region"`

	CompiledTemplate *Template `yaml:"-" pkl:"-"`
}

// Function is a single function definition as authored by the user.
type Function struct {
	Handler       string  `yaml:"handler,omitempty" pkl:"handler"`
	Name          string  `yaml:"name,omitempty" pkl:"name"`
	Runtime       string  `yaml:"runtime,omitempty" pkl:"runtime"`
	RecursiveLoop *string `yaml:"recursiveLoop,omitempty" pkl:"recursiveLoop"`

	Extra map[string]any `yaml:",inline" pkl:"-"` // Any other authored attribute

	// recursiveLoop as authored when it was not a YAML string, e.g. 1 or true
	rawRecursiveLoop any
}

func (f *Function) UnmarshalYAML(node *yaml.Node) error {
	type plain Function
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = Function(p)

	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "recursiveLoop" {
			continue
		}
		value := node.Content[i+1]
		if tag := value.ShortTag(); tag == "!!str" || tag == "!!null" {
			break
		}
		var raw any
		if err := value.Decode(&raw); err != nil {
			return err
		}
		f.rawRecursiveLoop = raw
		break
	}
	return nil
}

// Attribute returns the authored value of a function attribute by its
// descriptor key.
func (f *Function) Attribute(key string) (any, bool) {
	switch key {
	case "handler":
		return f.Handler, f.Handler != ""
	case "name":
		return f.Name, f.Name != ""
	case "runtime":
		return f.Runtime, f.Runtime != ""
	case "recursiveLoop":
		if f.rawRecursiveLoop != nil {
			return f.rawRecursiveLoop, true
		}
		if f.RecursiveLoop == nil {
			return nil, false
		}
		return *f.RecursiveLoop, true
	}
	v, ok := f.Extra[key]
	return v, ok
}

// ProviderName returns the provider name, or "" if the service has none.
func (s *Service) ProviderName() string {
	if s.Provider == nil {
		return ""
	}
	return s.Provider.Name
}
