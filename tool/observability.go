package tool

// ToolInvokeObservation captures one registry invocation outcome.
type ToolInvokeObservation struct {
	ToolName   string
	RequestID  string
	DurationMS int64
	Success    bool
	ErrorCode  string
	Status     int
}

// Observer receives tool-level observability events.
type Observer interface {
	ObserveInvoke(observation ToolInvokeObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveInvoke(ToolInvokeObservation) {}
