package model

import (
	"time"

	"github.com/google/uuid"
)

// Computer represents a computer in the inventory. Its current status and
// current user are never stored; they are derived from the two timelines.
type Computer struct {
	ID                     uuid.UUID `json:"id"`
	ManufacturerID         uuid.UUID `json:"manufacturer_id"`
	SerialNumber           string    `json:"serial_number"`
	PurchaseDate           time.Time `json:"purchase_date"`
	WarrantyExpirationDate time.Time `json:"warranty_expiration_date"`
	Specifications         string    `json:"specifications,omitempty"`
	ImageURL               string    `json:"image_url,omitempty"`
	Version                int64     `json:"version"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	// Joined fields (not always populated)
	ManufacturerName string `json:"manufacturer_name,omitempty"`

	StatusAssignments []StatusAssignment `json:"status_assignments,omitempty"`
	UserAssignments   []UserAssignment   `json:"user_assignments,omitempty"`
}

// StatusAssignment is one entry of a computer's status timeline.
type StatusAssignment struct {
	ID         uuid.UUID `json:"id"`
	ComputerID uuid.UUID `json:"computer_id"`
	StatusID   uuid.UUID `json:"status_id"`
	AssignDate time.Time `json:"assign_date"`

	// Joined fields (not always populated)
	StatusName string `json:"status_name,omitempty"`
}

// UserAssignment is one entry of a computer's user timeline. A nil EndDate
// marks the open assignment.
type UserAssignment struct {
	ID         uuid.UUID  `json:"id"`
	ComputerID uuid.UUID  `json:"computer_id"`
	UserID     uuid.UUID  `json:"user_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`

	// Joined fields (not always populated)
	UserFirstName    string `json:"user_first_name,omitempty"`
	UserLastName     string `json:"user_last_name,omitempty"`
	UserEmail        string `json:"user_email,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty"`
	ManufacturerName string `json:"manufacturer_name,omitempty"`
}

// IsOpen reports whether the assignment has not been closed yet.
func (a UserAssignment) IsOpen() bool {
	return a.EndDate == nil
}
