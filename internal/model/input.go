package model

import (
	"time"

	"github.com/google/uuid"
)

// Field length limits shared by validation and the schema.
const (
	MaxNameLength           = 100
	MaxEmailLength          = 256
	MaxURLLength            = 2048
	MaxSerialNumberLength   = 50
	MaxSpecificationsLength = 4000
)

// ComputerInput is the writable part of a computer used by create and update.
// Status is optional; create defaults it to "new", update appends it only
// when it differs from the current status. A non-zero Version must match the
// stored version.
type ComputerInput struct {
	ManufacturerID         uuid.UUID `json:"manufacturer_id" validate:"required"`
	SerialNumber           string    `json:"serial_number" validate:"required,max=50"`
	PurchaseDate           time.Time `json:"purchase_date" validate:"required"`
	WarrantyExpirationDate time.Time `json:"warranty_expiration_date" validate:"required"`
	Specifications         string    `json:"specifications,omitempty" validate:"max=4000"`
	ImageURL               string    `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	Status                 string    `json:"status,omitempty" validate:"omitempty,max=50"`
	Version                int64     `json:"version,omitempty" validate:"gte=0"`
}

// StatusInput changes the status of a computer.
type StatusInput struct {
	Status string `json:"status" validate:"required,max=50"`
}

// UserInput is the writable part of a user.
type UserInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=256"`
}

// EndAssignmentInput optionally backdates the end of an assignment.
type EndAssignmentInput struct {
	EndDate *time.Time `json:"end_date,omitempty"`
}
