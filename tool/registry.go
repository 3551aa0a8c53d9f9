package tool

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the registry lifecycle state.
type State string

const (
	StateInitializing State = "initializing"
	StateReady        State = "ready"
)

// RegistryConfig configures a Registry. Zero values are usable.
type RegistryConfig struct {
	Pipeline  *Pipeline
	Observer  Observer
	Logger    *slog.Logger
	RequestID func() string
}

// Registry is the process-scoped set of tools exposed to a calling agent.
// Tools are registered during startup, then Seal moves it to StateReady.
type Registry struct {
	pipeline  Pipeline
	observer  Observer
	logger    *slog.Logger
	requestID func() string

	mu      sync.RWMutex
	order   []string
	entries map[string]*Adapter
	state   State
}

// NewRegistry creates an empty registry in StateInitializing.
func NewRegistry(cfg RegistryConfig) *Registry {
	pipeline := DefaultPipeline()
	if cfg.Pipeline != nil {
		pipeline = *cfg.Pipeline
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RequestID == nil {
		cfg.RequestID = func() string { return uuid.NewString() }
	}
	return &Registry{
		pipeline:  pipeline,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		requestID: cfg.RequestID,
		entries:   make(map[string]*Adapter),
		state:     StateInitializing,
	}
}

// Register adds a tool. It fails with DUPLICATE_TOOL when the name is taken,
// REGISTRY_CLOSED after Seal, and INVALID_DESCRIPTOR when validation reports errors.
func (r *Registry) Register(desc Descriptor, op Operation) error {
	validation := r.pipeline.ValidateDescriptor(desc)
	if validation.HasErrors() {
		return withToolErrorDetails(
			NewToolError(ToolErrorCodeInvalidDescriptor, fmt.Sprintf("tool %q: %s", desc.Name, validation.Errors()), false, nil),
			map[string]any{"diagnostics": validation.Diagnostics},
		)
	}
	adapter, err := NewAdapter(desc, op)
	if err != nil {
		return NewToolError(ToolErrorCodeInvalidDescriptor, "", false, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateReady {
		return NewToolError(ToolErrorCodeRegistryClosed, fmt.Sprintf("cannot register %q: registry is sealed", desc.Name), false, nil)
	}
	if _, exists := r.entries[desc.Name]; exists {
		return NewToolError(ToolErrorCodeDuplicateTool, fmt.Sprintf("tool %q is already registered", desc.Name), false, nil)
	}
	r.entries[desc.Name] = adapter
	r.order = append(r.order, desc.Name)
	return nil
}

// Seal moves the registry to StateReady. Further registrations are rejected.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.state = StateReady
	r.mu.Unlock()
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	adapter, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return Descriptor{}, false
	}
	return adapter.Descriptor(), true
}

// List yields descriptors in registration order. Each range over the sequence
// takes a fresh snapshot, so it can be restarted.
func (r *Registry) List() iter.Seq[Descriptor] {
	return func(yield func(Descriptor) bool) {
		r.mu.RLock()
		adapters := make([]*Adapter, 0, len(r.order))
		for _, name := range r.order {
			adapters = append(adapters, r.entries[name])
		}
		r.mu.RUnlock()

		for _, adapter := range adapters {
			if !yield(adapter.Descriptor()) {
				return
			}
		}
	}
}

// Invoke runs the named tool with raw arguments.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) Result {
	requestID := r.requestID()
	logger := r.logger.With(slog.String("tool", name), slog.String("request_id", requestID))

	r.mu.RLock()
	adapter, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		logger.Warn("unknown tool invoked")
		result := Fail(ToolErrorCodeUnknownTool, fmt.Sprintf("tool %q is not registered", name))
		r.observer.ObserveInvoke(ToolInvokeObservation{
			ToolName:  name,
			RequestID: requestID,
			Success:   false,
			ErrorCode: ToolErrorCodeUnknownTool,
		})
		return result
	}

	start := time.Now()
	result := adapter.Invoke(ctx, args)
	duration := elapsedMS(start)

	observation := ToolInvokeObservation{
		ToolName:   name,
		RequestID:  requestID,
		DurationMS: duration,
		Success:    result.OK(),
	}
	if result.Failure != nil {
		observation.ErrorCode = result.Failure.Kind
		observation.Status = result.Failure.Status
		logger.Warn("tool invocation failed",
			slog.String("code", result.Failure.Kind),
			slog.Int("status", result.Failure.Status),
			slog.String("error", result.Failure.Message),
			slog.Int64("duration_ms", duration),
		)
	} else {
		logger.Debug("tool invocation succeeded", slog.Int64("duration_ms", duration))
	}
	r.observer.ObserveInvoke(observation)
	return result
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
