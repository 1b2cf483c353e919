package registry

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestPrompt_Get(t *testing.T) {
	reg := New()
	reg.Prompt("greet").
		Description("greeting").
		Argument("name", "who to greet", true).
		Argument("style", "greeting style", false).
		Handler(func(ctx context.Context, args map[string]string) (*PromptResult, error) {
			return &PromptResult{
				Messages: []PromptMessage{
					{Role: "user", Content: TextContent{Type: "text", Text: "Hello, " + args["name"]}},
				},
			}, nil
		})

	prompt, _ := reg.GetPrompt("greet")
	result, err := prompt.Get(context.Background(), map[string]string{"name": "World"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.Messages))
	}
	content, ok := result.Messages[0].Content.(TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Messages[0].Content)
	}
	if content.Text != "Hello, World" {
		t.Errorf("text = %q", content.Text)
	}
}

func TestPrompt_GetMissingRequiredArgument(t *testing.T) {
	reg := New()
	reg.Prompt("greet").
		Argument("name", "who to greet", true).
		Handler(staticPromptHandler("hi"))

	prompt, _ := reg.GetPrompt("greet")

	for _, args := range []map[string]string{nil, {}, {"name": ""}} {
		_, err := prompt.Get(context.Background(), args)
		if err == nil {
			t.Errorf("expected error for args %v", args)
			continue
		}
		if !strings.Contains(err.Error(), "missing required argument: name") {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestPrompt_GetHandlerError(t *testing.T) {
	reg := New()
	reg.Prompt("fail").Handler(func(ctx context.Context, args map[string]string) (*PromptResult, error) {
		return nil, fmt.Errorf("template engine down")
	})

	prompt, _ := reg.GetPrompt("fail")
	if _, err := prompt.Get(context.Background(), nil); err == nil {
		t.Error("expected handler error")
	}
}
