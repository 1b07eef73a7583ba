package modkit

// Option adjusts how a module is built
type Option func(*Built)

// Built is the resolved build input a module's New reads
type Built struct {
	// Name labels the module in logs, panics and the registry
	Name string
	// Ports carries upstream ports; the concrete type belongs to the receiving module
	Ports any
}

// WithName sets the module name
func WithName(name string) Option {
	return func(b *Built) { b.Name = name }
}

// WithPorts injects upstream ports, or a ready port set that replaces the module's own wiring
func WithPorts[T any](p T) Option {
	return func(b *Built) { b.Ports = p }
}

// Build applies opts in order; later options win and nil options are skipped
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		if o != nil {
			o(&b)
		}
	}
	return b
}
