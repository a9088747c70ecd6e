package capabilities

import "fmt"

// Registry maps a vendor tag to its capability set, adapted from the
// teacher's DriverFactory (cli/factory.go). Only "huawei" is registered:
// the spec scopes this system to a single MA5801-family device, so there
// is no second driver to select between, but the registry shape is kept
// so a second vendor could be added later without reshaping callers.
type Registry struct {
	entries map[string]MA5801Capabilities
}

// NewRegistry returns a Registry pre-populated with the Huawei MA5801
// capability set.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]MA5801Capabilities)}
	r.Register("huawei", Default())
	return r
}

// Register adds or replaces the capability set for a vendor tag.
func (r *Registry) Register(vendor string, caps MA5801Capabilities) {
	r.entries[vendor] = caps
}

// Get returns the capability set for vendor, or an error if unregistered.
func (r *Registry) Get(vendor string) (MA5801Capabilities, error) {
	caps, ok := r.entries[vendor]
	if !ok {
		return MA5801Capabilities{}, fmt.Errorf("capabilities: unsupported vendor %q", vendor)
	}
	return caps, nil
}
