package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDescriptorValidator struct {
	diags []Diagnostic
}

func (s stubDescriptorValidator) ValidateDescriptor(Descriptor) []Diagnostic {
	return s.diags
}

func TestPipelineValidateDescriptor(t *testing.T) {
	var p Pipeline
	p.AddValidator(stubDescriptorValidator{
		diags: []Diagnostic{{Severity: SeverityWarning, Message: "warning"}},
	})
	p.AddValidator(stubDescriptorValidator{
		diags: []Diagnostic{{Field: "name", Severity: SeverityError, Message: "error"}},
	})

	result := p.ValidateDescriptor(Descriptor{Name: "x"})
	require.Len(t, result.Diagnostics, 2)
	assert.True(t, result.HasErrors())
	assert.Equal(t, "name: error", result.Errors())
}

func TestPipelineValidateDescriptorNoErrors(t *testing.T) {
	var p Pipeline
	p.AddValidator(stubDescriptorValidator{
		diags: []Diagnostic{{Severity: SeverityWarning, Message: "warning"}},
	})

	result := p.ValidateDescriptor(Descriptor{Name: "x"})
	assert.False(t, result.HasErrors())
	assert.Empty(t, result.Errors())
}
