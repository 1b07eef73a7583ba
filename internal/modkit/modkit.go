// Package modkit wires job modules: shared deps, build options and injected ports
package modkit

// Module is what every service module exposes; the registry stores these
type Module interface {
	Ports() any
	Name() string
}
