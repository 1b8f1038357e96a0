package model

import (
	"time"

	"github.com/google/uuid"
)

// WarrantyStatus classifies remaining warranty time.
type WarrantyStatus string

const (
	WarrantyRed    WarrantyStatus = "RED"
	WarrantyYellow WarrantyStatus = "YELLOW"
	WarrantyGreen  WarrantyStatus = "GREEN"
)

// ComputerView is a computer with its derived state.
type ComputerView struct {
	ID                     uuid.UUID      `json:"id"`
	ManufacturerID         uuid.UUID      `json:"manufacturer_id"`
	ManufacturerName       string         `json:"manufacturer_name"`
	SerialNumber           string         `json:"serial_number"`
	PurchaseDate           time.Time      `json:"purchase_date"`
	WarrantyExpirationDate time.Time      `json:"warranty_expiration_date"`
	Specifications         string         `json:"specifications,omitempty"`
	ImageURL               string         `json:"image_url,omitempty"`
	Version                int64          `json:"version"`
	Status                 string         `json:"status,omitempty"`
	StatusDisplayName      string         `json:"status_display_name,omitempty"`
	WarrantyStatus         WarrantyStatus `json:"warranty_status"`
	CurrentUser            *UserSummary   `json:"current_user,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
}

// UserSummary is the short form of a user embedded in other views.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

// UserView is a user together with the computers currently assigned to them.
type UserView struct {
	ID               uuid.UUID         `json:"id"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Email            string            `json:"email"`
	CreatedAt        time.Time         `json:"created_at"`
	CurrentComputers []ComputerSummary `json:"current_computers"`
}

// ComputerSummary is the short form of a computer embedded in other views.
type ComputerSummary struct {
	ID               uuid.UUID `json:"id"`
	SerialNumber     string    `json:"serial_number"`
	ManufacturerName string    `json:"manufacturer_name"`
	AssignedSince    time.Time `json:"assigned_since"`
}

// AssignmentView is a user assignment with denormalized display fields.
type AssignmentView struct {
	ID               uuid.UUID  `json:"id"`
	ComputerID       uuid.UUID  `json:"computer_id"`
	UserID           uuid.UUID  `json:"user_id"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	UserFullName     string     `json:"user_full_name"`
	UserEmail        string     `json:"user_email"`
	SerialNumber     string     `json:"serial_number"`
	ManufacturerName string     `json:"manufacturer_name"`
}

// SerialCheck is the result of a serial number format check.
type SerialCheck struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
