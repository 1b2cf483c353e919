package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Library is a registry of compiled, named schemas. Handlers compile
// the schemas they need once (typically in their setup phase) and
// validate incoming values against them by name.
type Library struct {
	mu      sync.RWMutex
	schemas map[string]*compiled
}

type compiled struct {
	schema *Schema
	typ    reflect.Type
}

// NewLibrary creates an empty schema library.
func NewLibrary() *Library {
	return &Library{
		schemas: make(map[string]*compiled),
	}
}

// Compile generates a schema from the given prototype value and stores
// it under name, overwriting any previous schema with that name.
func (l *Library) Compile(name string, prototype any) error {
	t := reflect.TypeOf(prototype)
	if t == nil {
		return fmt.Errorf("schema %q: prototype must not be nil", name)
	}

	s, err := GenerateFromType(t)
	if err != nil {
		return fmt.Errorf("schema %q: %w", name, err)
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	l.mu.Lock()
	l.schemas[name] = &compiled{schema: s, typ: t}
	l.mu.Unlock()
	return nil
}

// Schema returns the compiled schema registered under name.
func (l *Library) Schema(name string) (*Schema, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.schemas[name]
	if !ok {
		return nil, false
	}
	return c.schema, true
}

// Validate checks data against the named schema and, on success,
// decodes it into a freshly allocated value of the schema's prototype
// type. On failure it returns the structured violations.
func (l *Library) Validate(name string, data json.RawMessage) (any, error) {
	l.mu.RLock()
	c, ok := l.schemas[name]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("schema %q: not compiled", name)
	}

	if err := c.schema.Validate(data); err != nil {
		return nil, err
	}

	out := reflect.New(c.typ)
	if err := json.Unmarshal(data, out.Interface()); err != nil {
		return nil, fmt.Errorf("schema %q: decode: %w", name, err)
	}

	return out.Elem().Interface(), nil
}
