package logger

import "sync"

// named holds loggers registered per component ("pipeline", "reporter",
// "server") so a host can route one component's output differently.
var named sync.Map

// Register stores l under name. Later calls to Get(name) return it.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger
// tagged with name as its component.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return Global().WithComponent(name)
}

func resetRegistry() {
	named.Range(func(k, _ any) bool {
		named.Delete(k)
		return true
	})
}
