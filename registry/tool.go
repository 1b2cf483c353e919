package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/toolrpc/protocol"
	"github.com/felixgeelhaar/toolrpc/schema"
)

// Tool pairs a declarative tool definition with its handler. The
// definition is immutable once registered; the handler is invoked by
// reference.
type Tool struct {
	name          string
	description   string
	inputType     reflect.Type
	inputSchema   *schema.Schema
	validateInput bool
	handler       any
	hasContext    bool
}

// ToolInfo represents metadata about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema any
}

// ToolBuilder provides a fluent API for building tools.
type ToolBuilder struct {
	tool     *Tool
	registry *Registry
	err      error
}

// Description sets the tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	if b.err != nil {
		return b
	}
	b.tool.description = desc
	return b
}

// ValidateInput enables runtime schema validation of tool inputs.
// When enabled, inputs are validated against the generated JSON Schema
// before the handler is called. Invalid inputs result in an
// InvalidParams error.
func (b *ToolBuilder) ValidateInput() *ToolBuilder {
	if b.err != nil {
		return b
	}
	b.tool.validateInput = true
	return b
}

// Handler sets the tool handler function and registers the tool.
// Handler signature must be one of:
//   - func(input T) (R, error)
//   - func(ctx context.Context, input T) (R, error)
func (b *ToolBuilder) Handler(fn any) *ToolBuilder {
	if b.err != nil {
		return b
	}

	if err := b.validateHandler(fn); err != nil {
		b.err = err
		return b
	}

	b.tool.handler = fn
	b.registry.registerTool(b.tool)
	return b
}

// Err returns the first error encountered while building, if any.
func (b *ToolBuilder) Err() error {
	return b.err
}

// validateHandler validates the handler function signature.
func (b *ToolBuilder) validateHandler(fn any) error {
	fnType := reflect.TypeOf(fn)

	if fnType == nil || fnType.Kind() != reflect.Func {
		return fmt.Errorf("handler must be a function, got %T", fn)
	}

	numIn := fnType.NumIn()
	if numIn < 1 || numIn > 2 {
		return fmt.Errorf("handler must have 1 or 2 parameters, got %d", numIn)
	}

	var inputParamIdx int
	if numIn == 2 {
		if !fnType.In(0).Implements(reflect.TypeOf((*context.Context)(nil)).Elem()) {
			return fmt.Errorf("first parameter must be context.Context when using 2 parameters")
		}
		b.tool.hasContext = true
		inputParamIdx = 1
	}

	inputType := fnType.In(inputParamIdx)
	if inputType.Kind() == reflect.Ptr {
		inputType = inputType.Elem()
	}
	b.tool.inputType = inputType

	inputSchema, err := schema.GenerateFromType(inputType)
	if err != nil {
		return fmt.Errorf("failed to generate input schema: %w", err)
	}
	b.tool.inputSchema = inputSchema

	if fnType.NumOut() != 2 {
		return fmt.Errorf("handler must return (result, error), got %d return values", fnType.NumOut())
	}

	errType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errType) {
		return fmt.Errorf("second return value must be error")
	}

	return nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.name
}

// Execute runs the tool handler with the given JSON input.
func (t *Tool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	if t.validateInput && t.inputSchema != nil {
		if err := t.inputSchema.Validate(input); err != nil {
			return nil, protocol.NewInvalidParams(fmt.Sprintf("input validation failed: %v", err))
		}
	}

	inputPtr := reflect.New(t.inputType)
	if err := json.Unmarshal(input, inputPtr.Interface()); err != nil {
		return nil, protocol.NewInvalidParams(fmt.Sprintf("failed to parse input: %v", err))
	}

	fnVal := reflect.ValueOf(t.handler)
	var args []reflect.Value

	if t.hasContext {
		args = append(args, reflect.ValueOf(ctx))
	}
	args = append(args, inputPtr.Elem())

	results := fnVal.Call(args)

	resultVal := results[0].Interface()
	errVal := results[1].Interface()

	if errVal != nil {
		return nil, errVal.(error)
	}

	return resultVal, nil
}
