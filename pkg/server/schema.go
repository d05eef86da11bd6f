package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/regdesk/pkg/apperr"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schemas holds the compiled request body schemas, keyed by file name without
// the .json suffix ("license.create", "login", ...).
type Schemas struct {
	byName map[string]*jsonschema.Schema
}

// LoadSchemas compiles every embedded schema.
func LoadSchemas() (*Schemas, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema resource %s: %w", e.Name(), err)
		}
		names = append(names, e.Name())
	}

	s := &Schemas{byName: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		s.byName[strings.TrimSuffix(name, ".json")] = schema
	}
	return s, nil
}

// Validate checks body against the named schema. A failure is reported as a
// ValidationError naming the first offending field.
func (s *Schemas) Validate(name string, body []byte) error {
	schema, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("no schema named %q", name)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return &apperr.ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &apperr.ValidationError{Message: err.Error()}
	}
	leaf := firstCause(ve)
	field, message := fieldOf(leaf)
	return &apperr.ValidationError{Field: field, Message: message}
}

func firstCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// fieldOf extracts the field name from a leaf error. Missing required
// properties are reported at the parent location, so the name is taken from
// the message instead.
func fieldOf(err *jsonschema.ValidationError) (string, string) {
	const missing = "missing properties: "
	if rest, ok := strings.CutPrefix(err.Message, missing); ok {
		first, _, _ := strings.Cut(rest, ",")
		return strings.Trim(first, `'" `), "is required"
	}
	loc := strings.TrimPrefix(err.InstanceLocation, "/")
	return strings.ReplaceAll(loc, "/", "."), err.Message
}
