package serial

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/pkg/errors"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validator checks serial numbers for format and uniqueness. The two checks
// are independent; callers run Validate first since it needs no store lookup
// once the pattern is cached.
type Validator struct {
	registry  *Registry
	computers repository.ComputerRepository
}

// NewValidator creates a new serial number validator
func NewValidator(registry *Registry, computers repository.ComputerRepository) *Validator {
	return &Validator{
		registry:  registry,
		computers: computers,
	}
}

// Validate returns nil when serial fully matches the manufacturer's pattern.
func (v *Validator) Validate(ctx context.Context, serial string, manufacturerID uuid.UUID) error {
	if strings.TrimSpace(serial) == "" {
		return errors.ValidationError("serial number is required")
	}

	pattern, err := v.registry.Lookup(ctx, manufacturerID)
	if err != nil {
		return err
	}

	if !pattern.Matches(serial) {
		return errors.ValidationError(fmt.Sprintf("format mismatch: %s", pattern.ManufacturerName)).
			WithDetail("serial_number", serial)
	}
	return nil
}

// IsUnique reports whether no computer other than exclude holds serial.
func (v *Validator) IsUnique(ctx context.Context, serial string, exclude *uuid.UUID) (bool, error) {
	exists, err := v.computers.Exists(ctx, repository.ComputerFilter{
		SerialNumber: serial,
		ExcludeID:    exclude,
	})
	if err != nil {
		return false, errors.DatabaseError("failed to check serial number uniqueness", err)
	}
	return !exists, nil
}

// Check is the boolean form of Validate. Only store failures come back as errors.
func (v *Validator) Check(ctx context.Context, serial string, manufacturerID uuid.UUID) (model.SerialCheck, error) {
	err := v.Validate(ctx, serial, manufacturerID)
	if err == nil {
		return model.SerialCheck{Valid: true}, nil
	}

	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrorCodeValidation {
		return model.SerialCheck{Valid: false, Reason: appErr.Message}, nil
	}
	return model.SerialCheck{}, err
}
