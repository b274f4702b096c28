package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed assets/export-v1.schema.json
var exportSchemaJSON []byte

var (
	exportSchemaOnce sync.Once
	exportSchema     *jsonschema.Schema
	exportSchemaErr  error
)

const exportSchemaID = "keytutor-export-v1.schema.json"

func compiledExportSchema() (*jsonschema.Schema, error) {
	exportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(exportSchemaID, bytes.NewReader(exportSchemaJSON)); err != nil {
			exportSchemaErr = err
			return
		}
		exportSchema, exportSchemaErr = compiler.Compile(exportSchemaID)
	})
	return exportSchema, exportSchemaErr
}

// ValidateExport checks an ExportData document's shape against the export
// schema before ImportAll begins staging. A malformed export fails here,
// before any file on disk is touched, rather than partway through the
// two-phase commit.
func ValidateExport(data ExportData) error {
	schema, err := compiledExportSchema()
	if err != nil {
		return fmt.Errorf("compiling export schema: %w", err)
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling export for validation: %w", err)
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return fmt.Errorf("decoding export for validation: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("export document failed schema validation: %w", err)
	}
	return nil
}
