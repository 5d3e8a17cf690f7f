package listing

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed listing.schema.json
var schemaSource string

var listingSchema = compileSchema()

func compileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("listing.schema.json", bytes.NewReader([]byte(schemaSource))); err != nil {
		panic(fmt.Sprintf("add listing schema: %v", err))
	}
	schema, err := compiler.Compile("listing.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile listing schema: %v", err))
	}
	return schema
}

// Validate checks a raw record against the listing schema. Failures wrap
// ErrMalformed.
func Validate(raw []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := listingSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
