package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchDescriptor() Descriptor {
	return Descriptor{
		Name:        "search_drivers",
		Description: "Search for Formula 1 drivers by name or surname",
		Params: map[string]ParamSpec{
			"q":      {Type: TypeString, Required: true},
			"limit":  {Type: TypeInteger, Default: 30},
			"offset": {Type: TypeInteger, Default: 0},
		},
	}
}

func TestAdapterBindAppliesDefaultsAndDropsUnknownKeys(t *testing.T) {
	adapter, err := NewAdapter(searchDescriptor(), func(context.Context, Args) (any, error) { return nil, nil })
	require.NoError(t, err)

	args, err := adapter.Bind(map[string]any{"q": "verstappen", "unknown": 1})
	require.NoError(t, err)
	assert.Equal(t, Args{"q": "verstappen", "limit": int64(30), "offset": int64(0)}, args)
}

func TestAdapterInvokeMissingParameterSkipsOperation(t *testing.T) {
	calls := 0
	adapter, err := NewAdapter(searchDescriptor(), func(context.Context, Args) (any, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)

	for _, raw := range []map[string]any{{}, {"q": nil}, {"q": "  "}} {
		result := adapter.Invoke(context.Background(), raw)
		require.NotNil(t, result.Failure)
		assert.Equal(t, ToolErrorCodeMissingParameter, result.Failure.Kind)
		assert.Contains(t, result.Failure.Message, `"q"`)
		assert.Nil(t, result.Payload)
	}
	assert.Zero(t, calls)
}

func TestAdapterInvokeInvalidParameter(t *testing.T) {
	adapter, err := NewAdapter(searchDescriptor(), func(context.Context, Args) (any, error) {
		t.Fatal("operation must not run")
		return nil, nil
	})
	require.NoError(t, err)

	result := adapter.Invoke(context.Background(), map[string]any{"q": "max", "limit": "ten"})
	require.NotNil(t, result.Failure)
	assert.Equal(t, ToolErrorCodeInvalidParameter, result.Failure.Kind)
	assert.Equal(t, `parameter "limit" must be an integer, got string`, result.Failure.Message)
}

func TestAdapterInvokePreservesOperationFailure(t *testing.T) {
	adapter, err := NewAdapter(searchDescriptor(), func(context.Context, Args) (any, error) {
		return nil, RemoteStatusError(502, "bad gateway", nil)
	})
	require.NoError(t, err)

	result := adapter.Invoke(context.Background(), map[string]any{"q": "max"})
	assert.Equal(t, &Failure{Kind: ToolErrorCodeRemoteStatus, Message: "bad gateway", Status: 502}, result.Failure)
}

func TestAdapterInvokeForeignError(t *testing.T) {
	adapter, err := NewAdapter(searchDescriptor(), func(context.Context, Args) (any, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	result := adapter.Invoke(context.Background(), map[string]any{"q": "max"})
	assert.Equal(t, &Failure{Kind: ToolErrorCodeInvocationFailed, Message: "boom"}, result.Failure)
}

func TestAdapterInvokeSuccess(t *testing.T) {
	adapter, err := NewAdapter(searchDescriptor(), func(_ context.Context, args Args) (any, error) {
		limit, _ := args.Int("limit")
		return map[string]any{"q": args.String("q"), "limit": limit}, nil
	})
	require.NoError(t, err)

	result := adapter.Invoke(context.Background(), map[string]any{"q": "leclerc", "limit": 5.0})
	require.True(t, result.OK())
	assert.Equal(t, map[string]any{"q": "leclerc", "limit": int64(5)}, result.Payload)
}

func TestNewAdapterRejectsNilOperation(t *testing.T) {
	_, err := NewAdapter(searchDescriptor(), nil)
	require.Error(t, err)
}
