package registry

import (
	"context"
	"testing"
)

type echoInput struct {
	Message string `json:"message" jsonschema:"required"`
}

func echoHandler(input echoInput) (string, error) {
	return input.Message, nil
}

func staticResourceHandler(text string) ResourceHandler {
	return func(ctx context.Context, uri string, params map[string]string) (*ResourceContent, error) {
		return &ResourceContent{URI: uri, MimeType: "text/plain", Text: text}, nil
	}
}

func staticPromptHandler(text string) PromptHandler {
	return func(ctx context.Context, args map[string]string) (*PromptResult, error) {
		return &PromptResult{
			Messages: []PromptMessage{
				{Role: "user", Content: TextContent{Type: "text", Text: text}},
			},
		}, nil
	}
}

func TestRegistry_ToolRegistrationOrder(t *testing.T) {
	reg := New()

	reg.Tool("charlie").Handler(echoHandler)
	reg.Tool("alpha").Handler(echoHandler)
	reg.Tool("bravo").Handler(echoHandler)

	tools := reg.Tools()
	if len(tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(tools))
	}

	want := []string{"charlie", "alpha", "bravo"}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tools[%d] = %q, want %q", i, tools[i].Name, name)
		}
	}
}

func TestRegistry_OverwriteKeepsPosition(t *testing.T) {
	reg := New()

	reg.Tool("first").Description("original").Handler(echoHandler)
	reg.Tool("second").Handler(echoHandler)
	reg.Tool("first").Description("replaced").Handler(echoHandler)

	tools := reg.Tools()
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools after overwrite, got %d", len(tools))
	}
	if tools[0].Name != "first" {
		t.Errorf("overwrite moved tool to position %q", tools[0].Name)
	}
	if tools[0].Description != "replaced" {
		t.Errorf("overwrite kept old definition: %q", tools[0].Description)
	}
}

func TestRegistry_GetTool(t *testing.T) {
	reg := New()
	reg.Tool("echo").Handler(echoHandler)

	if _, ok := reg.GetTool("echo"); !ok {
		t.Error("expected to find registered tool")
	}
	if _, ok := reg.GetTool("missing"); ok {
		t.Error("expected lookup miss for unregistered tool")
	}
}

func TestRegistry_RemoveTool(t *testing.T) {
	reg := New()
	reg.Tool("a").Handler(echoHandler)
	reg.Tool("b").Handler(echoHandler)

	reg.RemoveTool("a")

	if _, ok := reg.GetTool("a"); ok {
		t.Error("removed tool still resolvable")
	}
	tools := reg.Tools()
	if len(tools) != 1 || tools[0].Name != "b" {
		t.Errorf("unexpected tools after removal: %+v", tools)
	}

	// Removing a missing name is a no-op.
	reg.RemoveTool("a")
}

func TestRegistry_ResourceRegistrationOrder(t *testing.T) {
	reg := New()

	reg.Resource("files://{path}").Handler(staticResourceHandler("file"))
	reg.Resource("config://settings").Handler(staticResourceHandler("config"))

	resources := reg.Resources()
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
	if resources[0].URITemplate != "files://{path}" {
		t.Errorf("resources[0] = %q", resources[0].URITemplate)
	}
}

func TestRegistry_FindResourceForURI(t *testing.T) {
	reg := New()

	reg.Resource("users://{id}").Name("by id").Handler(staticResourceHandler("a"))
	reg.Resource("users://{id}/profile").Name("profile").Handler(staticResourceHandler("b"))

	res, ok := reg.FindResourceForURI("users://42")
	if !ok {
		t.Fatal("expected a match for users://42")
	}
	if res.URITemplate() != "users://{id}" {
		t.Errorf("matched %q", res.URITemplate())
	}

	res, ok = reg.FindResourceForURI("users://42/profile")
	if !ok {
		t.Fatal("expected a match for users://42/profile")
	}
	if res.URITemplate() != "users://{id}/profile" {
		t.Errorf("matched %q", res.URITemplate())
	}

	if _, ok := reg.FindResourceForURI("other://thing"); ok {
		t.Error("expected no match for unrelated URI")
	}
}

func TestRegistry_FindResourceForURI_FirstRegisteredWins(t *testing.T) {
	reg := New()

	reg.Resource("data://{a}").Name("first").Handler(staticResourceHandler("1"))
	reg.Resource("data://{b}").Name("second").Handler(staticResourceHandler("2"))

	res, ok := reg.FindResourceForURI("data://x")
	if !ok {
		t.Fatal("expected a match")
	}
	if res.URITemplate() != "data://{a}" {
		t.Errorf("expected first registered template to win, matched %q", res.URITemplate())
	}
}

func TestRegistry_RemoveResource(t *testing.T) {
	reg := New()
	reg.Resource("config://settings").Handler(staticResourceHandler("x"))

	reg.RemoveResource("config://settings")

	if _, ok := reg.FindResourceForURI("config://settings"); ok {
		t.Error("removed resource still matched")
	}
	if len(reg.Resources()) != 0 {
		t.Error("removed resource still listed")
	}
}

func TestRegistry_PromptRegistrationOrder(t *testing.T) {
	reg := New()

	reg.Prompt("zeta").Handler(staticPromptHandler("z"))
	reg.Prompt("alpha").Handler(staticPromptHandler("a"))

	prompts := reg.Prompts()
	if len(prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(prompts))
	}
	if prompts[0].Name != "zeta" || prompts[1].Name != "alpha" {
		t.Errorf("unexpected order: %q, %q", prompts[0].Name, prompts[1].Name)
	}
}

func TestRegistry_RemovePrompt(t *testing.T) {
	reg := New()
	reg.Prompt("greet").Handler(staticPromptHandler("hi"))

	reg.RemovePrompt("greet")

	if _, ok := reg.GetPrompt("greet"); ok {
		t.Error("removed prompt still resolvable")
	}
}
