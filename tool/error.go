package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// ToolErrorCodeMissingParameter is returned when a required parameter is absent or empty.
	ToolErrorCodeMissingParameter = "MISSING_PARAMETER"
	// ToolErrorCodeInvalidParameter is returned when a parameter has the wrong type.
	ToolErrorCodeInvalidParameter = "INVALID_PARAMETER"
	// ToolErrorCodeUnknownTool is returned when no tool is registered under a name.
	ToolErrorCodeUnknownTool = "UNKNOWN_TOOL"
	// ToolErrorCodeDuplicateTool is returned when a name is registered twice.
	ToolErrorCodeDuplicateTool = "DUPLICATE_TOOL"
	// ToolErrorCodeRegistryClosed is returned when registering after Seal.
	ToolErrorCodeRegistryClosed = "REGISTRY_CLOSED"
	// ToolErrorCodeInvalidDescriptor is returned when a descriptor fails validation.
	ToolErrorCodeInvalidDescriptor = "INVALID_DESCRIPTOR"
	// ToolErrorCodeNetworkFailure is returned when the outbound call could not complete.
	ToolErrorCodeNetworkFailure = "NETWORK_FAILURE"
	// ToolErrorCodeRemoteStatus is returned for non-2xx upstream responses.
	ToolErrorCodeRemoteStatus = "REMOTE_STATUS"
	// ToolErrorCodeDecodeFailure is returned when the upstream body is not JSON.
	ToolErrorCodeDecodeFailure = "DECODE_FAILURE"
	// ToolErrorCodeInvocationFailed is a generic fallback for operation failures.
	ToolErrorCodeInvocationFailed = "INVOCATION_FAILED"
)

const detailStatus = "status"

// ToolError is a structured invocation error that can flow from operations through
// the registry to MCP and HTTP boundaries without losing its machine-readable code.
type ToolError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return ToolErrorCodeInvocationFailed
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Status returns the upstream HTTP status carried by REMOTE_STATUS errors, or 0.
func (e *ToolError) Status() int {
	if e == nil || e.Details == nil {
		return 0
	}
	status, _ := e.Details[detailStatus].(int)
	return status
}

// NewToolError builds a ToolError, defaulting the code and message when blank.
func NewToolError(code, message string, retryable bool, cause error) *ToolError {
	cleanCode := strings.TrimSpace(code)
	if cleanCode == "" {
		cleanCode = ToolErrorCodeInvocationFailed
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &ToolError{
		Code:      cleanCode,
		Message:   cleanMsg,
		Retryable: retryable,
		Cause:     cause,
	}
}

// RemoteStatusError builds a REMOTE_STATUS error for an upstream HTTP status.
func RemoteStatusError(status int, message string, cause error) *ToolError {
	return withToolErrorDetails(
		NewToolError(ToolErrorCodeRemoteStatus, message, status >= 500, cause),
		map[string]any{detailStatus: status},
	)
}

func missingParameter(name string) *ToolError {
	return withToolErrorDetails(
		NewToolError(ToolErrorCodeMissingParameter, fmt.Sprintf("parameter %q is required", name), false, nil),
		map[string]any{"parameter": name},
	)
}

func invalidParameter(name, want string, got any) *ToolError {
	return withToolErrorDetails(
		NewToolError(ToolErrorCodeInvalidParameter, fmt.Sprintf("parameter %q must be %s, got %s", name, article(want), describeValue(got)), false, nil),
		map[string]any{"parameter": name},
	)
}

func withToolErrorDetails(err *ToolError, details map[string]any) *ToolError {
	if err == nil {
		return nil
	}
	if len(details) == 0 {
		return err
	}
	if err.Details == nil {
		err.Details = make(map[string]any, len(details))
	}
	for key, value := range details {
		err.Details[key] = value
	}
	return err
}

func toolErrorFrom(err error) (*ToolError, bool) {
	if err == nil {
		return nil, false
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr, true
	}
	return nil, false
}

// ErrorCode returns the ToolError code carried by err, or "" when err is not one.
func ErrorCode(err error) string {
	if toolErr, ok := toolErrorFrom(err); ok && toolErr != nil {
		return toolErr.Code
	}
	return ""
}

func article(typeName string) string {
	switch typeName {
	case TypeInteger:
		return "an integer"
	default:
		return "a " + typeName
	}
}

func describeValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
