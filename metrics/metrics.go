// Package metrics defines the events a cache reports while serving requests.
package metrics

// Metrics receives cache lifecycle events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// Hit is called when a valid entry is returned.
	Hit()
	// Miss is called when a key is absent or expired.
	Miss()
	// Eviction is called when an entry is dropped to respect the size bound.
	Eviction()
	// Expire is called when an entry is dropped because its TTL elapsed.
	Expire()
}

// Noop ignores every event.
type Noop struct{}

var _ Metrics = Noop{}

func (Noop) Hit()      {}
func (Noop) Miss()     {}
func (Noop) Eviction() {}
func (Noop) Expire()   {}
