package registry

import (
	"sync"

	"github.com/felixgeelhaar/toolrpc/middleware"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration traces.
func WithLogger(l middleware.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// Registry holds three independent name-keyed tables: tools by name,
// resources by URI template, prompts by name. Each entry pairs a
// declarative definition with its handler. The tables are guarded by a
// read-write mutex, so registration is safe even after serving begins;
// the intended lifecycle is still configure-then-serve.
type Registry struct {
	mu     sync.RWMutex
	logger middleware.Logger

	tools         map[string]*Tool
	toolOrder     []string
	resources     map[string]*Resource
	resourceOrder []string
	prompts       map[string]*Prompt
	promptOrder   []string
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:    middleware.NopLogger{},
		tools:     make(map[string]*Tool),
		resources: make(map[string]*Resource),
		prompts:   make(map[string]*Prompt),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Tool starts building a new tool with the given name.
func (r *Registry) Tool(name string) *ToolBuilder {
	return &ToolBuilder{
		tool: &Tool{
			name: name,
		},
		registry: r,
	}
}

// Tools returns info about all registered tools in registration order.
// Handlers are never exposed.
func (r *Registry) Tools() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]ToolInfo, 0, len(r.toolOrder))
	for _, name := range r.toolOrder {
		t := r.tools[name]
		result = append(result, ToolInfo{
			Name:        t.name,
			Description: t.description,
			InputSchema: t.inputSchema,
		})
	}
	return result
}

// registerTool inserts or overwrites the entry for the tool's name.
// Registration cannot fail; overwriting keeps the original position.
func (r *Registry) registerTool(t *Tool) {
	r.mu.Lock()
	if _, exists := r.tools[t.name]; !exists {
		r.toolOrder = append(r.toolOrder, t.name)
	}
	r.tools[t.name] = t
	r.mu.Unlock()

	r.logger.Debug("registered tool", middleware.F("name", t.name))
}

// GetTool retrieves a tool by name. Absence is not an error at this
// layer; the dispatcher converts it into a protocol error.
func (r *Registry) GetTool(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// RemoveTool removes a tool by name. Administrative use only; removal
// is not part of the protocol surface.
func (r *Registry) RemoveTool(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	r.toolOrder = removeName(r.toolOrder, name)
}

// Resource starts building a new resource with the given URI template.
func (r *Registry) Resource(uriTemplate string) *ResourceBuilder {
	return &ResourceBuilder{
		resource: &Resource{
			uriTemplate: uriTemplate,
		},
		registry: r,
	}
}

// Resources returns info about all registered resources in registration order.
func (r *Registry) Resources() []ResourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]ResourceInfo, 0, len(r.resourceOrder))
	for _, uri := range r.resourceOrder {
		res := r.resources[uri]
		result = append(result, ResourceInfo{
			URITemplate: res.uriTemplate,
			Name:        res.name,
			Description: res.description,
			MimeType:    res.mimeType,
		})
	}
	return result
}

func (r *Registry) registerResource(res *Resource) {
	r.mu.Lock()
	if _, exists := r.resources[res.uriTemplate]; !exists {
		r.resourceOrder = append(r.resourceOrder, res.uriTemplate)
	}
	r.resources[res.uriTemplate] = res
	r.mu.Unlock()

	r.logger.Debug("registered resource", middleware.F("uri", res.uriTemplate))
}

// GetResource retrieves a resource by its exact URI template.
func (r *Registry) GetResource(uriTemplate string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[uriTemplate]
	return res, ok
}

// FindResourceForURI finds the first registered resource whose template
// matches the given concrete URI, in registration order.
func (r *Registry) FindResourceForURI(uri string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tmpl := range r.resourceOrder {
		res := r.resources[tmpl]
		if _, ok := res.Match(uri); ok {
			return res, true
		}
	}
	return nil, false
}

// RemoveResource removes a resource by URI template. Administrative use only.
func (r *Registry) RemoveResource(uriTemplate string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[uriTemplate]; !ok {
		return
	}
	delete(r.resources, uriTemplate)
	r.resourceOrder = removeName(r.resourceOrder, uriTemplate)
}

// Prompt starts building a new prompt with the given name.
func (r *Registry) Prompt(name string) *PromptBuilder {
	return &PromptBuilder{
		prompt: &Prompt{
			name: name,
		},
		registry: r,
	}
}

// Prompts returns info about all registered prompts in registration order.
func (r *Registry) Prompts() []PromptInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]PromptInfo, 0, len(r.promptOrder))
	for _, name := range r.promptOrder {
		p := r.prompts[name]
		result = append(result, PromptInfo{
			Name:        p.name,
			Description: p.description,
			Arguments:   p.arguments,
		})
	}
	return result
}

func (r *Registry) registerPrompt(p *Prompt) {
	r.mu.Lock()
	if _, exists := r.prompts[p.name]; !exists {
		r.promptOrder = append(r.promptOrder, p.name)
	}
	r.prompts[p.name] = p
	r.mu.Unlock()

	r.logger.Debug("registered prompt", middleware.F("name", p.name))
}

// GetPrompt retrieves a prompt by name.
func (r *Registry) GetPrompt(name string) (*Prompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prompts[name]
	return p, ok
}

// RemovePrompt removes a prompt by name. Administrative use only.
func (r *Registry) RemovePrompt(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[name]; !ok {
		return
	}
	delete(r.prompts, name)
	r.promptOrder = removeName(r.promptOrder, name)
}

func removeName(order []string, name string) []string {
	for i, n := range order {
		if n == name {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
