package tool

import "fmt"

// Result is the outcome of one tool invocation: exactly one of Payload or
// Failure is meaningful. A nil Failure means success.
type Result struct {
	Payload any      `json:"payload,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Failure is the machine-readable failure side of a Result.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.Status != 0 {
		return fmt.Sprintf("%s(%d): %s", f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Success wraps a payload.
func Success(payload any) Result {
	return Result{Payload: payload}
}

// Fail builds a failed Result.
func Fail(kind, message string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message}}
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// ResultFromError maps an operation error to a failed Result. ToolError codes,
// messages and upstream status are carried over unchanged.
func ResultFromError(err error) Result {
	if err == nil {
		return Result{}
	}
	if toolErr, ok := toolErrorFrom(err); ok {
		return Result{Failure: &Failure{
			Kind:    toolErr.Code,
			Message: toolErr.Message,
			Status:  toolErr.Status(),
		}}
	}
	return Fail(ToolErrorCodeInvocationFailed, err.Error())
}
