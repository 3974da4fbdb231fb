package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofhir/datamodel/internal/config"
	"github.com/gofhir/datamodel/pkg/loader"
	"github.com/gofhir/datamodel/pkg/logger"
	"github.com/gofhir/datamodel/pkg/r5"
	"github.com/gofhir/datamodel/pkg/schema"
)

// schemaExtensions lists the file types read from schema directories.
var schemaExtensions = []string{".yaml", ".yml", ".json"}

// loadedFile records how many entries one schema file contributed.
type loadedFile struct {
	Name    string `json:"file"`
	Entries int    `json:"entries"`
}

// buildRegistry registers the built-in slice when enabled, every schema
// file found in the configured directories, then files. The result is
// verified and sealed.
func buildRegistry(cfg *config.Config, files []string) (*schema.Registry, []loadedFile, error) {
	reg := schema.New()
	if cfg.Builtin {
		if err := r5.Register(reg); err != nil {
			return nil, nil, fmt.Errorf("builtin schemas: %w", err)
		}
	}

	var names []string
	for _, dir := range cfg.SchemaDirs {
		found, err := schemaFiles(dir)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, found...)
	}
	names = append(names, files...)

	opts := []loader.ConvertOption{loader.SkipConstraints(cfg.SkipConstraints...)}
	loaded := make([]loadedFile, 0, len(names))
	for _, name := range names {
		entries, err := loader.LoadFile(name, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := loader.RegisterAll(reg, entries); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		logger.Debug("Loaded %d entries from %s", len(entries), name)
		loaded = append(loaded, loadedFile{Name: name, Entries: len(entries)})
	}

	if err := reg.Verify(); err != nil {
		return nil, loaded, err
	}
	reg.Seal()
	logger.Info("Registry ready: %d types", reg.Len())
	return reg, loaded, nil
}

// schemaFiles lists the schema files directly inside dir, sorted.
func schemaFiles(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("schema dir: %w", err)
	}
	var out []string
	for _, de := range des {
		if de.IsDir() || !slices.Contains(schemaExtensions, strings.ToLower(filepath.Ext(de.Name()))) {
			continue
		}
		out = append(out, filepath.Join(dir, de.Name()))
	}
	return out, nil
}
