package core

// Logger interface for scene loading and rendering diagnostics
type Logger interface {
	Printf(format string, args ...interface{})
}
