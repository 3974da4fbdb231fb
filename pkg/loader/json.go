package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/datamodel/pkg/schema"
)

// ErrUnsupported is returned for files no reader understands.
var ErrUnsupported = errors.New("loader: unsupported input")

// LoadJSON reads a JSON array of schema documents, or a single document.
func LoadJSON(data []byte) ([]*schema.Entry, error) {
	data = bytes.TrimSpace(data)
	var docs []Document
	if len(data) > 0 && data[0] == '{' {
		var d Document
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("loader: json: %w", err)
		}
		docs = append(docs, d)
	} else if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("loader: json: %w", err)
	}
	return entries(docs)
}

// LoadStructureDefinition decodes a StructureDefinition resource and
// converts it.
func LoadStructureDefinition(data []byte, opts ...ConvertOption) ([]*schema.Entry, error) {
	var sd r4.StructureDefinition
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("loader: StructureDefinition: %w", err)
	}
	return FromStructureDefinition(&sd, opts...)
}

// LoadFile picks a reader by extension. JSON files holding a
// StructureDefinition resource are converted; other JSON is read as
// schema documents.
func LoadFile(name string, opts ...ConvertOption) ([]*schema.Entry, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(data))
	case ".json":
		if isStructureDefinition(data) {
			return LoadStructureDefinition(data, opts...)
		}
		return LoadJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
}

func isStructureDefinition(data []byte) bool {
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, &probe) == nil && probe.ResourceType == "StructureDefinition"
}
