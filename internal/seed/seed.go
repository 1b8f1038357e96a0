// Package seed loads manufacturer and status reference data.
package seed

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/internal/serial"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

// ReferenceData is the document format of a reference data file.
type ReferenceData struct {
	Manufacturers []model.Manufacturer   `yaml:"manufacturers"`
	Statuses      []model.ComputerStatus `yaml:"statuses"`
}

// Default returns the built-in reference data.
func Default() (*ReferenceData, error) {
	return Parse(defaultData)
}

// LoadFile reads reference data from path. An empty path selects the built-in data.
func LoadFile(path string) (*ReferenceData, error) {
	if path == "" {
		return Default()
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference data: %w", err)
	}
	return Parse(buf)
}

// Parse decodes and checks a reference data document.
func Parse(buf []byte) (*ReferenceData, error) {
	var data ReferenceData
	if err := yaml.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("parse reference data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Validate rejects unnamed or duplicate entries and serial patterns that do
// not compile. Requiring the lifecycle statuses keeps assign and end working.
func (d *ReferenceData) Validate() error {
	seen := make(map[string]bool, len(d.Manufacturers))
	for i, m := range d.Manufacturers {
		if m.Name == "" {
			return fmt.Errorf("manufacturer %d: name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("manufacturer %q: duplicate name", m.Name)
		}
		seen[m.Name] = true
		if m.SerialPattern != "" {
			if _, err := serial.Compile(m.ID, m.Name, m.SerialPattern); err != nil {
				return fmt.Errorf("manufacturer %q: invalid serial pattern: %w", m.Name, err)
			}
		}
	}

	statuses := make(map[string]bool, len(d.Statuses))
	for i, st := range d.Statuses {
		if st.Name == "" {
			return fmt.Errorf("status %d: name is required", i)
		}
		if statuses[st.Name] {
			return fmt.Errorf("status %q: duplicate name", st.Name)
		}
		statuses[st.Name] = true
	}
	for _, required := range []string{model.StatusNew, model.StatusInUse, model.StatusAvailable} {
		if !statuses[required] {
			return fmt.Errorf("status %q is required", required)
		}
	}
	return nil
}

// Apply inserts the entries that are not in the store yet.
func Apply(ctx context.Context, repos *repository.Store, data *ReferenceData) error {
	if err := repos.Manufacturers.AddAll(ctx, data.Manufacturers); err != nil {
		return fmt.Errorf("seed manufacturers: %w", err)
	}
	if err := repos.Statuses.AddAll(ctx, data.Statuses); err != nil {
		return fmt.Errorf("seed statuses: %w", err)
	}
	return nil
}
