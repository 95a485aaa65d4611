package ir

import "encoding/json"

// Template represents a CloudFormation template under construction.
// Top-level sections without a field, such as Transform or Rules, are kept
// verbatim in Extra.
type Template struct {
	AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion,omitempty"`
	Description              string               `json:"Description,omitempty"`
	Metadata                 map[string]any       `json:"Metadata,omitempty"`
	Parameters               map[string]any       `json:"Parameters,omitempty"`
	Mappings                 map[string]any       `json:"Mappings,omitempty"`
	Conditions               map[string]any       `json:"Conditions,omitempty"`
	Resources                map[string]*Resource `json:"Resources"`
	Outputs                  map[string]any       `json:"Outputs,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Resource is a single logical resource in a template. Attributes without
// a field, such as CreationPolicy or UpdatePolicy, are kept in Extra.
type Resource struct {
	Type                string         `json:"Type"` // e.g., "AWS::Lambda::Function"
	Properties          map[string]any `json:"Properties,omitempty"`
	DependsOn           any            `json:"DependsOn,omitempty"`
	Condition           string         `json:"Condition,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty"`
	Metadata            map[string]any `json:"Metadata,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (t *Template) UnmarshalJSON(data []byte) error {
	type plain Template
	var p plain
	extra, err := decodeObject(data, &p)
	if err != nil {
		return err
	}
	*t = Template(p)
	t.Extra = extra
	return nil
}

func (t Template) MarshalJSON() ([]byte, error) {
	type plain Template
	return encodeObject(plain(t), t.Extra)
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	type plain Resource
	var p plain
	extra, err := decodeObject(data, &p)
	if err != nil {
		return err
	}
	*r = Resource(p)
	r.Extra = extra
	return nil
}

func (r Resource) MarshalJSON() ([]byte, error) {
	type plain Resource
	return encodeObject(plain(r), r.Extra)
}

// Resource looks up a resource by logical id.
func (t *Template) Resource(logicalID string) (*Resource, bool) {
	if t == nil {
		return nil, false
	}
	res, ok := t.Resources[logicalID]
	if !ok || res == nil {
		return nil, false
	}
	return res, true
}

// SetProperty sets a single property, allocating the property map if needed.
func (r *Resource) SetProperty(key string, value any) {
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}
	r.Properties[key] = value
}
