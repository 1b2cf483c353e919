package registry

// Capabilities indicates which categories have at least one registered
// entry. It is exchanged during the initialize handshake and available
// for introspection.
type Capabilities struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

// Capabilities derives the capability descriptor from the current table
// contents. It is recomputed on every call and never cached.
func (r *Registry) Capabilities() Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Capabilities{
		Tools:     len(r.tools) > 0,
		Resources: len(r.resources) > 0,
		Prompts:   len(r.prompts) > 0,
	}
}
