package tool

import "strings"

// Severity defines diagnostic severity produced by validators.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a structured validation finding.
type Diagnostic struct {
	Field    string   `json:"field,omitempty"`
	Code     string   `json:"code,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// DescriptorValidator validates a tool descriptor.
type DescriptorValidator interface {
	ValidateDescriptor(desc Descriptor) []Diagnostic
}

// ValidationResult aggregates diagnostics from one or more validation passes.
type ValidationResult struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// HasErrors returns true when at least one error-severity diagnostic exists.
func (r ValidationResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity messages joined for display.
func (r ValidationResult) Errors() string {
	msgs := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		if d.Severity != SeverityError {
			continue
		}
		if d.Field != "" {
			msgs = append(msgs, d.Field+": "+d.Message)
			continue
		}
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// Pipeline composes descriptor validators.
type Pipeline struct {
	validators []DescriptorValidator
}

// DefaultPipeline returns the pipeline used by registries unless overridden.
func DefaultPipeline() Pipeline {
	var p Pipeline
	p.AddValidator(TypeSystemValidator{})
	return p
}

// AddValidator appends a descriptor validator to the pipeline.
func (p *Pipeline) AddValidator(v DescriptorValidator) {
	p.validators = append(p.validators, v)
}

// ValidateDescriptor runs all validators and returns aggregated findings.
func (p Pipeline) ValidateDescriptor(desc Descriptor) ValidationResult {
	result := ValidationResult{Diagnostics: make([]Diagnostic, 0)}
	for _, validator := range p.validators {
		result.Diagnostics = append(result.Diagnostics, validator.ValidateDescriptor(desc)...)
	}
	return result
}
