package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse decodes a serialized collection. Empty input is an empty collection.
func Parse(data []byte) ([]Book, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Book{}, nil
	}
	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parsing collection JSON: %w", err)
	}
	if books == nil {
		return []Book{}, nil
	}
	return books, nil
}

// ParseYAML decodes a YAML export produced by MarshalYAML.
func ParseYAML(data []byte) ([]Book, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Book{}, nil
	}
	var books []Book
	if err := yaml.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parsing collection YAML: %w", err)
	}
	if books == nil {
		return []Book{}, nil
	}
	return books, nil
}
