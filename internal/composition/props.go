package composition

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteProps stores the composition as JSON input props for the render job.
func WriteProps(c *Composition, path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal props: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadProps loads props written by WriteProps.
func ReadProps(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Composition
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse props: %w", err)
	}
	return &c, nil
}
