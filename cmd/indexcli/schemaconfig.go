package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"indexcore/internal/schema"
	"indexcore/internal/storage"
)

// schemaFieldConfig is the declarative field definition the ingest
// subcommand reads from --schema on first run, mirroring the
// Field/Kind/TextOptions/U32Options shape of schema.Schema itself.
type schemaFieldConfig struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // "text" or "u32"
	Indexed   bool   `json:"indexed"`
	Tokenized bool   `json:"tokenized"`
	Stored    bool   `json:"stored"`
	Fast      bool   `json:"fast"`
}

const schemaFileName = "schema.json"

// loadSchema reads the persisted schema from dataDir, written by a
// prior ingest run.
func loadSchema(dataDir string) (*schema.Schema, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, schemaFileName))
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return schema.Unmarshal(data)
}

// loadOrCreateSchema returns the schema already persisted in dataDir,
// or builds one from configPath and persists it if none exists yet.
func loadOrCreateSchema(dataDir, configPath string) (*schema.Schema, error) {
	schemaPath := filepath.Join(dataDir, schemaFileName)
	if storage.FileExists(schemaPath) {
		return loadSchema(dataDir)
	}

	if configPath == "" {
		return nil, fmt.Errorf("no schema found in %s and --schema was not given", dataDir)
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read schema config: %w", err)
	}
	var fields []schemaFieldConfig
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("parse schema config: %w", err)
	}

	s := schema.New()
	for _, f := range fields {
		switch f.Kind {
		case "text":
			if _, err := s.AddTextField(f.Name, schema.TextOptions{
				Indexed:   f.Indexed,
				Tokenized: f.Tokenized,
				Stored:    f.Stored,
			}); err != nil {
				return nil, fmt.Errorf("add text field %q: %w", f.Name, err)
			}
		case "u32":
			if _, err := s.AddU32Field(f.Name, schema.U32Options{
				Indexed: f.Indexed,
				Fast:    f.Fast,
			}); err != nil {
				return nil, fmt.Errorf("add u32 field %q: %w", f.Name, err)
			}
		default:
			return nil, fmt.Errorf("schema config: field %q has unknown kind %q", f.Name, f.Kind)
		}
	}

	if err := storage.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	data, err := s.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	// Atomic tmp-then-rename write: schema.json is written once and read
	// by every later ingest/query invocation, so a half-written file must
	// never be observable.
	if err := storage.AtomicWriteFile(schemaPath, data, dataDir); err != nil {
		return nil, fmt.Errorf("write schema: %w", err)
	}
	return s, nil
}
