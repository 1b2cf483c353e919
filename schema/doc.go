// Package schema provides JSON Schema generation from Go types,
// validation of JSON values against those schemas, and a library of
// named compiled schemas.
//
// The dispatcher never validates params itself; validation is a
// collaborator consumed inside individual tool and prompt handlers.
// Tools opt in with ValidateInput, which validates arguments against
// the schema generated from the handler's input type.
//
// # Generation
//
// Schemas are generated by reflection over struct fields. The json tag
// controls the property name; the jsonschema tag adds constraints:
//
//	type SearchInput struct {
//	    Query string `json:"query" jsonschema:"required,description=Search query"`
//	    Limit int    `json:"limit"`
//	}
//
//	s, err := schema.Generate(SearchInput{})
//
// # Validation
//
// Validate returns nil for valid input or ValidationErrors listing
// every violation with its JSON path:
//
//	err := s.Validate(json.RawMessage(`{"limit": 5}`))
//	// err: "query: required field is missing"
//
// # Named schemas
//
// A Library holds compiled schemas by name. Validate checks a value
// against a named schema and returns the typed decoded value, or the
// list of violations:
//
//	lib := schema.NewLibrary()
//	lib.Compile("search", SearchInput{})
//	v, err := lib.Validate("search", raw) // v.(SearchInput) on success
package schema
