package tool

import (
	"context"
	"errors"
	"strings"
)

// Operation is the backend call bound to a tool. It receives arguments that have
// already been validated against the descriptor, with defaults applied.
type Operation func(ctx context.Context, args Args) (any, error)

// Args holds validated arguments. Integers are int64 and numbers float64.
type Args map[string]any

// String returns the string argument name, or "".
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns the integer argument name and whether it was set.
func (a Args) Int(name string) (int64, bool) {
	i, ok := a[name].(int64)
	return i, ok
}

// Adapter binds an Operation to its Descriptor and translates between the
// untyped argument object of a calling agent and a Result.
type Adapter struct {
	desc Descriptor
	op   Operation
}

// NewAdapter wraps op as a tool described by desc.
func NewAdapter(desc Descriptor, op Operation) (*Adapter, error) {
	if op == nil {
		return nil, errors.New("tool: adapter operation is nil")
	}
	if strings.TrimSpace(desc.Name) == "" {
		return nil, errors.New("tool: adapter descriptor has no name")
	}
	return &Adapter{desc: desc.clone(), op: op}, nil
}

// Descriptor returns a copy of the adapter's descriptor.
func (a *Adapter) Descriptor() Descriptor {
	return a.desc.clone()
}

// Bind validates raw arguments and applies defaults. Undeclared keys are dropped.
func (a *Adapter) Bind(raw map[string]any) (Args, error) {
	args := make(Args, len(a.desc.Params))
	for _, name := range a.desc.ParamNames() {
		spec := a.desc.Params[name]
		value, present := raw[name]
		if !present || value == nil {
			if spec.Required {
				return nil, missingParameter(name)
			}
			if spec.Default != nil {
				if normalised, ok := coerceValue(spec.Type, spec.Default); ok {
					args[name] = normalised
				}
			}
			continue
		}

		normalised, ok := coerceValue(spec.Type, value)
		if !ok {
			return nil, invalidParameter(name, spec.Type, value)
		}
		if s, isString := normalised.(string); isString && spec.Required && strings.TrimSpace(s) == "" {
			return nil, missingParameter(name)
		}
		args[name] = normalised
	}
	return args, nil
}

// Invoke validates raw, runs the operation and wraps its outcome.
func (a *Adapter) Invoke(ctx context.Context, raw map[string]any) Result {
	if a == nil || a.op == nil {
		return Fail(ToolErrorCodeInvocationFailed, "tool: adapter has no operation")
	}
	args, err := a.Bind(raw)
	if err != nil {
		return ResultFromError(err)
	}
	payload, err := a.op(ctx, args)
	if err != nil {
		return ResultFromError(err)
	}
	return Success(payload)
}
