package storefront

// LogEvent describes a store-side occurrence worth recording, typically a
// failed snapshot write or activity fan-out.
type LogEvent struct {
	Store  string
	Op     string
	Detail string
	Err    error
}

// Logger records store events.
type Logger interface {
	LogStoreEvent(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogStoreEvent implements Logger.
func (f LoggerFunc) LogStoreEvent(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogStoreEvent(LogEvent) {}
