package registry

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ResourceContent represents the content returned by a resource read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // Base64 encoded binary data
}

// ResourceHandler is the function signature for resource handlers.
type ResourceHandler func(ctx context.Context, uri string, params map[string]string) (*ResourceContent, error)

// Resource pairs a resource definition with its handler. The URI
// template may contain {param} placeholders; a template without
// placeholders matches only its own literal URI.
type Resource struct {
	uriTemplate string
	name        string
	description string
	mimeType    string
	handler     ResourceHandler

	uriRegex   *regexp.Regexp
	paramNames []string
}

// ResourceInfo represents metadata about a registered resource.
type ResourceInfo struct {
	URITemplate string
	Name        string
	Description string
	MimeType    string
}

// ResourceBuilder provides a fluent API for building resources.
type ResourceBuilder struct {
	resource *Resource
	registry *Registry
	err      error
}

// Name sets an optional human-readable name for the resource.
func (b *ResourceBuilder) Name(name string) *ResourceBuilder {
	if b.err != nil {
		return b
	}
	b.resource.name = name
	return b
}

// Description sets the resource description.
func (b *ResourceBuilder) Description(desc string) *ResourceBuilder {
	if b.err != nil {
		return b
	}
	b.resource.description = desc
	return b
}

// MimeType sets the MIME type of the resource content.
func (b *ResourceBuilder) MimeType(mimeType string) *ResourceBuilder {
	if b.err != nil {
		return b
	}
	b.resource.mimeType = mimeType
	return b
}

// Handler sets the resource handler function and registers the resource.
func (b *ResourceBuilder) Handler(fn ResourceHandler) *ResourceBuilder {
	if b.err != nil {
		return b
	}

	b.resource.handler = fn

	if err := b.resource.compileTemplate(); err != nil {
		b.err = err
		return b
	}

	b.registry.registerResource(b.resource)
	return b
}

// Err returns the first error encountered while building, if any.
func (b *ResourceBuilder) Err() error {
	return b.err
}

var templateParamRegex = regexp.MustCompile(`\{([^}]+)\}`)

// compileTemplate converts the URI template to a regex for matching.
func (r *Resource) compileTemplate() error {
	matches := templateParamRegex.FindAllStringSubmatch(r.uriTemplate, -1)

	r.paramNames = make([]string, 0, len(matches))
	for _, match := range matches {
		r.paramNames = append(r.paramNames, match[1])
	}

	pattern := regexp.QuoteMeta(r.uriTemplate)
	pattern = strings.ReplaceAll(pattern, `\{`, "{")
	pattern = strings.ReplaceAll(pattern, `\}`, "}")
	pattern = templateParamRegex.ReplaceAllString(pattern, `([^/]+)`)
	pattern = "^" + pattern + "$"

	var err error
	r.uriRegex, err = regexp.Compile(pattern)
	return err
}

// Match matches a concrete URI against the template and extracts
// parameter values.
func (r *Resource) Match(uri string) (map[string]string, bool) {
	if r.uriRegex == nil {
		return nil, uri == r.uriTemplate
	}

	uriMatches := r.uriRegex.FindStringSubmatch(uri)
	if uriMatches == nil {
		return nil, false
	}

	params := make(map[string]string, len(r.paramNames))
	for i, name := range r.paramNames {
		if i+1 < len(uriMatches) {
			params[name] = uriMatches[i+1]
		}
	}

	return params, true
}

// URITemplate returns the resource's URI template.
func (r *Resource) URITemplate() string {
	return r.uriTemplate
}

// Read executes the resource handler for the given URI.
func (r *Resource) Read(ctx context.Context, uri string) (*ResourceContent, error) {
	params, ok := r.Match(uri)
	if !ok {
		return nil, fmt.Errorf("URI %q does not match template %q", uri, r.uriTemplate)
	}

	return r.handler(ctx, uri, params)
}
