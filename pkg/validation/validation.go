package validation

import (
	"computer-inventory-api/internal/model"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// instance returns the shared validator. Field names in messages are the
// JSON names so they match what clients send.
func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct runs the validate tags of s and returns one message per failed field.
func Struct(s interface{}) []string {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, message(fe))
	}
	return messages
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("invalid email format: %v", fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// ValidateEmail checks a single email address.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if err := instance().Var(email, "email,max=256"); err != nil {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateComputerInput trims the input in place and validates it.
func ValidateComputerInput(input *model.ComputerInput) []string {
	input.SerialNumber = strings.TrimSpace(input.SerialNumber)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.Status = strings.TrimSpace(input.Status)

	return Struct(input)
}

// ValidateUserInput trims the input in place and validates it.
func ValidateUserInput(input *model.UserInput) []string {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	return Struct(input)
}

// ValidateStatusInput trims the input in place and validates it.
func ValidateStatusInput(input *model.StatusInput) []string {
	input.Status = strings.TrimSpace(input.Status)
	return Struct(input)
}
