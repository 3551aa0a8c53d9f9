package tool

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu           sync.Mutex
	observations []ToolInvokeObservation
}

func (o *recordingObserver) ObserveInvoke(observation ToolInvokeObservation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observations = append(o.observations, observation)
}

func newTestRegistry(observer Observer) *Registry {
	return NewRegistry(RegistryConfig{
		Observer:  observer,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		RequestID: func() string { return "req-1" },
	})
}

func constOperation(payload any) Operation {
	return func(context.Context, Args) (any, error) { return payload, nil }
}

func TestRegistryRegisterDuplicateKeepsFirst(t *testing.T) {
	reg := newTestRegistry(nil)
	desc := Descriptor{Name: "get_all_drivers", Description: "first"}

	require.NoError(t, reg.Register(desc, constOperation("first")))
	err := reg.Register(Descriptor{Name: "get_all_drivers", Description: "second"}, constOperation("second"))
	require.Error(t, err)
	assert.Equal(t, ToolErrorCodeDuplicateTool, ErrorCode(err))

	got, ok := reg.Lookup("get_all_drivers")
	require.True(t, ok)
	assert.Equal(t, "first", got.Description)
	assert.Equal(t, "first", reg.Invoke(context.Background(), "get_all_drivers", nil).Payload)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryRejectsInvalidDescriptor(t *testing.T) {
	reg := newTestRegistry(nil)
	err := reg.Register(Descriptor{
		Name:   "bad",
		Params: map[string]ParamSpec{"limit": {Type: "int"}},
	}, constOperation(nil))
	require.Error(t, err)
	assert.Equal(t, ToolErrorCodeInvalidDescriptor, ErrorCode(err))
	assert.Zero(t, reg.Len())
}

func TestRegistrySealRejectsRegistration(t *testing.T) {
	reg := newTestRegistry(nil)
	require.Equal(t, StateInitializing, reg.State())
	reg.Seal()
	require.Equal(t, StateReady, reg.State())

	err := reg.Register(Descriptor{Name: "late", Description: "late"}, constOperation(nil))
	assert.Equal(t, ToolErrorCodeRegistryClosed, ErrorCode(err))
}

func TestRegistryInvokeUnknownTool(t *testing.T) {
	observer := &recordingObserver{}
	reg := newTestRegistry(observer)

	result := reg.Invoke(context.Background(), "unknown_tool", map[string]any{})
	require.NotNil(t, result.Failure)
	assert.Equal(t, ToolErrorCodeUnknownTool, result.Failure.Kind)
	require.Len(t, observer.observations, 1)
	assert.Equal(t, ToolErrorCodeUnknownTool, observer.observations[0].ErrorCode)
}

func TestRegistryListIsOrderedAndRestartable(t *testing.T) {
	reg := newTestRegistry(nil)
	for _, name := range []string{"get_all_teams", "search_teams", "get_team_by_id"} {
		require.NoError(t, reg.Register(Descriptor{Name: name, Description: name}, constOperation(nil)))
	}

	collect := func() []string {
		var names []string
		for desc := range reg.List() {
			names = append(names, desc.Name)
		}
		return names
	}
	want := []string{"get_all_teams", "search_teams", "get_team_by_id"}
	assert.Equal(t, want, collect())
	assert.Equal(t, want, collect())

	var first string
	for desc := range reg.List() {
		first = desc.Name
		break
	}
	assert.Equal(t, "get_all_teams", first)
}

func TestRegistryInvokeObservesOutcome(t *testing.T) {
	observer := &recordingObserver{}
	reg := newTestRegistry(observer)
	require.NoError(t, reg.Register(Descriptor{Name: "get_all_teams", Description: "teams"}, func(context.Context, Args) (any, error) {
		return nil, RemoteStatusError(500, "Internal Server Error", nil)
	}))

	result := reg.Invoke(context.Background(), "get_all_teams", map[string]any{})
	assert.Nil(t, result.Payload)
	assert.Equal(t, &Failure{Kind: ToolErrorCodeRemoteStatus, Message: "Internal Server Error", Status: 500}, result.Failure)

	require.Len(t, observer.observations, 1)
	obs := observer.observations[0]
	assert.Equal(t, "get_all_teams", obs.ToolName)
	assert.Equal(t, "req-1", obs.RequestID)
	assert.False(t, obs.Success)
	assert.Equal(t, 500, obs.Status)
}

func TestRegistryInvokeIsIdempotentForDeterministicOperation(t *testing.T) {
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Register(searchDescriptor(), func(_ context.Context, args Args) (any, error) {
		return map[string]any{"q": args.String("q")}, nil
	}))

	args := map[string]any{"q": "norris"}
	first := reg.Invoke(context.Background(), "search_drivers", args)
	second := reg.Invoke(context.Background(), "search_drivers", args)
	assert.Equal(t, first, second)
}

func TestRegistryConcurrentInvoke(t *testing.T) {
	reg := newTestRegistry(&recordingObserver{})
	require.NoError(t, reg.Register(searchDescriptor(), constOperation("ok")))
	reg.Seal()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := reg.Invoke(context.Background(), "search_drivers", map[string]any{"q": "x"})
			assert.True(t, result.OK())
		}()
	}
	wg.Wait()
}
