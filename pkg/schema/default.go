package schema

var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds an entry to the process-wide registry.
func Register(e *Entry) error {
	return defaultRegistry.Register(e)
}

// Lookup finds an entry in the process-wide registry.
func Lookup(typeName string) (*Entry, error) {
	return defaultRegistry.Lookup(typeName)
}
