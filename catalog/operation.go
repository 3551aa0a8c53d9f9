package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/petal-labs/f1mcp/f1api"
	"github.com/petal-labs/f1mcp/tool"
)

// Fetcher performs one remote GET. *f1api.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, q f1api.Query) (any, error)
}

// BuildQuery renders validated args into the remote query for e. Query
// parameters follow e.Query order; absent optional values fall back to the
// declared default and are skipped when there is none.
func (e Endpoint) BuildQuery(args tool.Args) (f1api.Query, error) {
	values := make(map[string]string)
	for _, name := range f1api.PathParams(e.Path) {
		value := args.String(name)
		if value == "" {
			return f1api.Query{}, tool.NewToolError(tool.ToolErrorCodeMissingParameter, fmt.Sprintf("parameter %q is required", name), false, nil)
		}
		// Dot segments survive path escaping and would climb out of the endpoint.
		if value == "." || value == ".." {
			return f1api.Query{}, tool.NewToolError(tool.ToolErrorCodeInvalidParameter, fmt.Sprintf("parameter %q must not be a dot segment", name), false, nil)
		}
		values[name] = value
	}

	q := f1api.Query{Path: f1api.ExpandPath(e.Path, values)}
	for _, name := range e.Query {
		value, ok := args[name]
		if !ok || value == nil {
			value = e.Params[name].Default
		}
		if value == nil {
			continue
		}
		q = q.Add(name, formatValue(value))
	}
	return q, nil
}

func formatValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}

// Operation returns the tool operation for e: build the query, fetch once and
// translate remote failures into tool errors.
func (e Endpoint) Operation(fetcher Fetcher) tool.Operation {
	return func(ctx context.Context, args tool.Args) (any, error) {
		q, err := e.BuildQuery(args)
		if err != nil {
			return nil, err
		}
		payload, err := fetcher.Fetch(ctx, q)
		if err != nil {
			return nil, toToolError(err)
		}
		return payload, nil
	}
}

func toToolError(err error) error {
	apiErr, ok := f1api.AsError(err)
	if !ok {
		return err
	}
	switch apiErr.Kind {
	case f1api.KindNetworkFailure:
		return tool.NewToolError(tool.ToolErrorCodeNetworkFailure, apiErr.Message, true, err)
	case f1api.KindRemoteStatus:
		return tool.RemoteStatusError(apiErr.Status, apiErr.Message, err)
	case f1api.KindDecodeFailure:
		return tool.NewToolError(tool.ToolErrorCodeDecodeFailure, apiErr.Message, false, err)
	default:
		return err
	}
}

// Register adds every endpoint to reg, bound to fetcher.
func Register(reg *tool.Registry, fetcher Fetcher) error {
	if reg == nil {
		return errors.New("catalog: registry is nil")
	}
	if fetcher == nil {
		return errors.New("catalog: fetcher is nil")
	}
	for _, e := range endpoints {
		if err := reg.Register(e.Descriptor(), e.Operation(fetcher)); err != nil {
			return fmt.Errorf("catalog: register %s: %w", e.Tool, err)
		}
	}
	return nil
}
