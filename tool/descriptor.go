package tool

import (
	"maps"
	"slices"
)

// Descriptor describes a registered tool independent of the surface exposing it.
type Descriptor struct {
	Name        string               `json:"name" yaml:"name"`
	Title       string               `json:"title,omitempty" yaml:"title,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Params      map[string]ParamSpec `json:"params,omitempty" yaml:"params,omitempty"`
}

// ParamSpec declares one accepted argument.
type ParamSpec struct {
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ParamNames returns declared parameter names in deterministic order.
func (d Descriptor) ParamNames() []string {
	return slices.Sorted(maps.Keys(d.Params))
}

// RequiredParams returns the names of required parameters in deterministic order.
func (d Descriptor) RequiredParams() []string {
	names := make([]string, 0, len(d.Params))
	for _, name := range d.ParamNames() {
		if d.Params[name].Required {
			names = append(names, name)
		}
	}
	return names
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Params = maps.Clone(d.Params)
	return out
}
