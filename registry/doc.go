// Package registry provides name-indexed storage for tool, resource,
// and prompt registrations, and derives the server's capability
// descriptor from its contents.
//
// The registry is a leaf component: it performs no validation of
// definitions and no protocol work. Lookups return an absence flag
// rather than an error; converting absence into a protocol error is the
// dispatcher's job. Registration cannot fail and emits a debug-level
// trace through the injected Logger.
//
// # Tools
//
// Tools are registered through the fluent builder API:
//
//	type SearchInput struct {
//	    Query string `json:"query" jsonschema:"required"`
//	}
//
//	reg.Tool("search").
//	    Description("Search for items").
//	    Handler(func(ctx context.Context, input SearchInput) ([]string, error) {
//	        return []string{"result1"}, nil
//	    })
//
// # Resources
//
// Resources expose data via URI templates:
//
//	reg.Resource("file://{path}").
//	    Name("File").
//	    MimeType("text/plain").
//	    Handler(func(ctx context.Context, uri string, params map[string]string) (*registry.ResourceContent, error) {
//	        return &registry.ResourceContent{URI: uri, Text: "content"}, nil
//	    })
//
// # Prompts
//
// Prompts expose parameterized message templates:
//
//	reg.Prompt("greet").
//	    Argument("name", "Name to greet", true).
//	    Handler(func(ctx context.Context, args map[string]string) (*registry.PromptResult, error) {
//	        return &registry.PromptResult{...}, nil
//	    })
//
// # Capabilities
//
// Capabilities() reports, per category, whether at least one entry is
// registered. The snapshot is recomputed on demand and never cached.
package registry
