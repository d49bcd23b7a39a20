package core

// Component represents a core daemon component. Modules implement this
// interface so the app can shut them down in reverse start order.
type Component interface {
	Shutdown() error
}

// AsyncComponent represents components with a blocking start that signal
// readiness through a channel.
type AsyncComponent interface {
	Component
	WaitForReady() chan bool
}
