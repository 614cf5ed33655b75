package core

// Event is a single telemetry emission at a start/stop/retry boundary.
type Event struct {
	Name         string
	Measurements map[string]float64
	Metadata     map[string]string
}

// Hook receives telemetry events. Hooks run synchronously on the emitting
// goroutine and must be fast.
type Hook func(Event)

// Emit fires the hook if present. A panicking hook is contained: telemetry
// must never affect control flow.
func Emit(h Hook, e Event) {
	if h == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	h(e)
}
