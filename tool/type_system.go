package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Parameter type literals accepted in descriptors.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

var validParamTypes = map[string]struct{}{
	TypeString:  {},
	TypeInteger: {},
	TypeNumber:  {},
	TypeBoolean: {},
}

// MCP tool names are limited to this alphabet.
var toolNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// TypeSystemValidator validates descriptor names, parameter types and defaults.
type TypeSystemValidator struct{}

// ValidateDescriptor satisfies DescriptorValidator.
func (TypeSystemValidator) ValidateDescriptor(desc Descriptor) []Diagnostic {
	diags := make([]Diagnostic, 0)

	if !toolNamePattern.MatchString(desc.Name) {
		diags = append(diags, Diagnostic{
			Field:    "name",
			Code:     "INVALID_NAME",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Tool name %q must match %s", desc.Name, toolNamePattern.String()),
		})
	}
	if strings.TrimSpace(desc.Description) == "" {
		diags = append(diags, Diagnostic{
			Field:    "description",
			Code:     "MISSING_DESCRIPTION",
			Severity: SeverityWarning,
			Message:  "Tool has no description; calling agents rely on it to pick tools",
		})
	}

	for _, name := range desc.ParamNames() {
		validateParamSpec("params."+name, desc.Params[name], &diags)
	}
	return diags
}

func validateParamSpec(path string, spec ParamSpec, diags *[]Diagnostic) {
	if !isValidParamType(spec.Type) {
		*diags = append(*diags, Diagnostic{
			Field:    path + ".type",
			Code:     "INVALID_TYPE",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Unsupported type %q; allowed: string, integer, number, boolean", spec.Type),
		})
		return
	}
	if spec.Default == nil {
		return
	}
	if spec.Required {
		*diags = append(*diags, Diagnostic{
			Field:    path + ".default",
			Code:     "DEFAULT_ON_REQUIRED",
			Severity: SeverityWarning,
			Message:  "Default is never applied to a required parameter",
		})
	}
	if _, ok := coerceValue(spec.Type, spec.Default); !ok {
		*diags = append(*diags, Diagnostic{
			Field:    path + ".default",
			Code:     "DEFAULT_TYPE_MISMATCH",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Default %v is not a valid %s", spec.Default, spec.Type),
		})
	}
}

func isValidParamType(typeName string) bool {
	_, ok := validParamTypes[typeName]
	return ok
}

// coerceValue checks v against typeName and normalises numeric values:
// integers become int64 and numbers float64.
func coerceValue(typeName string, v any) (any, bool) {
	switch typeName {
	case TypeString:
		s, ok := v.(string)
		return s, ok
	case TypeBoolean:
		b, ok := v.(bool)
		return b, ok
	case TypeInteger:
		return asInteger(v)
	case TypeNumber:
		return asNumber(v)
	}
	return nil, false
}

func asInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return fromUnsigned(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return fromUnsigned(n)
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if n != math.Trunc(n) || math.IsInf(n, 0) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return asInteger(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return asInteger(f)
	}
	return 0, false
}

func fromUnsigned(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ParseArg converts a textual argument (query string, CLI flag) into the declared type.
func ParseArg(spec ParamSpec, raw string) (any, error) {
	switch spec.Type {
	case TypeInteger:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return i, nil
	case TypeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

// ParseArgs converts textual arguments using desc. Keys the descriptor does not
// declare are passed through as strings; unparsable values yield INVALID_PARAMETER.
func ParseArgs(desc Descriptor, raw map[string]string) (map[string]any, error) {
	args := make(map[string]any, len(raw))
	for key, value := range raw {
		spec, ok := desc.Params[key]
		if !ok {
			args[key] = value
			continue
		}
		parsed, err := ParseArg(spec, value)
		if err != nil {
			return nil, withToolErrorDetails(
				NewToolError(ToolErrorCodeInvalidParameter, fmt.Sprintf("parameter %q: %v", key, err), false, err),
				map[string]any{"parameter": key},
			)
		}
		args[key] = parsed
	}
	return args, nil
}
