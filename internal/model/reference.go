package model

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status names used by the lifecycle transitions.
const (
	StatusNew           = "new"
	StatusInUse         = "in_use"
	StatusAvailable     = "available"
	StatusInMaintenance = "in_maintenance"
	StatusRetired       = "retired"
)

// Manufacturer is read-only reference data. SerialPattern holds the regular
// expression a serial number must fully match; empty means undefined.
type Manufacturer struct {
	ID            uuid.UUID `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	SerialPattern string    `json:"serial_pattern,omitempty" yaml:"serial_pattern"`
}

// ComputerStatus is read-only reference data looked up by name.
type ComputerStatus struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
}

// StatusDisplayName converts a status name into its display form, "in_use" -> "In Use".
func StatusDisplayName(name string) string {
	if name == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
