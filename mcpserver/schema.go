package mcpserver

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/petal-labs/f1mcp/tool"
)

// InputSchema renders a descriptor's parameters as a JSON Schema object.
func InputSchema(desc tool.Descriptor) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(desc.Params)),
	}
	for _, name := range desc.ParamNames() {
		spec := desc.Params[name]
		prop := &jsonschema.Schema{
			Type:        spec.Type,
			Description: spec.Description,
		}
		if spec.Default != nil {
			if raw, err := json.Marshal(spec.Default); err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[name] = prop
	}
	if required := desc.RequiredParams(); len(required) > 0 {
		schema.Required = required
	}
	return schema
}
