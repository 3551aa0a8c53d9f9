package tool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagnosticCodes(diags []Diagnostic) []string {
	codes := make([]string, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestTypeSystemValidatorAcceptsWellFormedDescriptor(t *testing.T) {
	desc := Descriptor{
		Name:        "search_drivers",
		Description: "Search drivers",
		Params: map[string]ParamSpec{
			"q":      {Type: TypeString, Required: true},
			"limit":  {Type: TypeInteger, Default: 30},
			"ratio":  {Type: TypeNumber, Default: 0.5},
			"active": {Type: TypeBoolean, Default: true},
		},
	}

	diags := TypeSystemValidator{}.ValidateDescriptor(desc)
	assert.Empty(t, diags)
}

func TestTypeSystemValidatorFindings(t *testing.T) {
	desc := Descriptor{
		Name: "bad name!",
		Params: map[string]ParamSpec{
			"a": {Type: "date"},
			"b": {Type: TypeInteger, Default: "thirty"},
			"c": {Type: TypeString, Required: true, Default: "x"},
		},
	}

	diags := TypeSystemValidator{}.ValidateDescriptor(desc)
	assert.ElementsMatch(t, []string{
		"INVALID_NAME",
		"MISSING_DESCRIPTION",
		"INVALID_TYPE",
		"DEFAULT_TYPE_MISMATCH",
		"DEFAULT_ON_REQUIRED",
	}, diagnosticCodes(diags))
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		in       any
		want     any
		ok       bool
	}{
		{name: "string", typeName: TypeString, in: "hamilton", want: "hamilton", ok: true},
		{name: "string rejects number", typeName: TypeString, in: 44.0, ok: false},
		{name: "integer from int", typeName: TypeInteger, in: 10, want: int64(10), ok: true},
		{name: "integer from integral float", typeName: TypeInteger, in: 30.0, want: int64(30), ok: true},
		{name: "integer rejects fraction", typeName: TypeInteger, in: 1.5, ok: false},
		{name: "integer from json number", typeName: TypeInteger, in: json.Number("7"), want: int64(7), ok: true},
		{name: "integer from json exponent", typeName: TypeInteger, in: json.Number("1e2"), want: int64(100), ok: true},
		{name: "integer rejects string", typeName: TypeInteger, in: "10", ok: false},
		{name: "integer rejects json number past int64", typeName: TypeInteger, in: json.Number("9223372036854775808"), ok: false},
		{name: "integer rejects float at 2^63", typeName: TypeInteger, in: float64(1 << 63), ok: false},
		{name: "integer accepts float at -2^63", typeName: TypeInteger, in: float64(-1 << 63), want: int64(-1 << 63), ok: true},
		{name: "integer from int8", typeName: TypeInteger, in: int8(-3), want: int64(-3), ok: true},
		{name: "integer from int16", typeName: TypeInteger, in: int16(300), want: int64(300), ok: true},
		{name: "integer from uint", typeName: TypeInteger, in: uint(5), want: int64(5), ok: true},
		{name: "integer from uint8", typeName: TypeInteger, in: uint8(5), want: int64(5), ok: true},
		{name: "integer from uint16", typeName: TypeInteger, in: uint16(5), want: int64(5), ok: true},
		{name: "integer from uint64", typeName: TypeInteger, in: uint64(5), want: int64(5), ok: true},
		{name: "integer rejects uint64 past int64", typeName: TypeInteger, in: uint64(1 << 63), ok: false},
		{name: "number from int", typeName: TypeNumber, in: 3, want: 3.0, ok: true},
		{name: "boolean", typeName: TypeBoolean, in: true, want: true, ok: true},
		{name: "unknown type", typeName: "date", in: "x", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceValue(tt.typeName, tt.in)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	desc := Descriptor{
		Name: "get_all_drivers",
		Params: map[string]ParamSpec{
			"limit":  {Type: TypeInteger},
			"offset": {Type: TypeInteger},
		},
	}

	args, err := ParseArgs(desc, map[string]string{"limit": "5", "extra": "kept"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"limit": int64(5), "extra": "kept"}, args)

	_, err = ParseArgs(desc, map[string]string{"offset": "ten"})
	require.Error(t, err)
	assert.Equal(t, ToolErrorCodeInvalidParameter, ErrorCode(err))
}
