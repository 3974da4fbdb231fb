package loader

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gofhir/datamodel/pkg/schema"
)

// LoadYAML reads a stream of YAML schema documents.
func LoadYAML(r io.Reader) ([]*schema.Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var docs []Document
	for {
		var d Document
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loader: yaml: %w", err)
		}
		docs = append(docs, d)
	}
	return entries(docs)
}
