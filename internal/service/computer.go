package service

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/projection"
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/internal/serial"
	"computer-inventory-api/pkg/errors"
	"computer-inventory-api/pkg/validation"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ComputerService handles business logic for computer operations
type ComputerService struct {
	base
	repos        *repository.Store
	serials      *serial.Validator
	warrantyDays int
}

// NewComputerService creates a new computer service
func NewComputerService(repos *repository.Store, serials *serial.Validator, opts Options) *ComputerService {
	days := opts.WarrantyThresholdDays
	if days <= 0 {
		days = projection.DefaultWarrantyThresholdDays
	}
	return &ComputerService{
		base:         newBase(opts),
		repos:        repos,
		serials:      serials,
		warrantyDays: days,
	}
}

// CreateComputer validates the input, then the serial format, then its
// uniqueness, and stores the computer with a single initial status entry.
func (s *ComputerService) CreateComputer(ctx context.Context, input model.ComputerInput) (*model.ComputerView, error) {
	if errs := validation.ValidateComputerInput(&input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	if err := s.serials.Validate(ctx, input.SerialNumber, input.ManufacturerID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSerial(ctx, input.SerialNumber, nil); err != nil {
		return nil, err
	}

	statusName := input.Status
	if statusName == "" {
		statusName = model.StatusNew
	}
	status, err := s.lookupStatus(ctx, statusName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	computer := model.Computer{
		ID:                     uuid.New(),
		ManufacturerID:         input.ManufacturerID,
		SerialNumber:           input.SerialNumber,
		PurchaseDate:           input.PurchaseDate,
		WarrantyExpirationDate: input.WarrantyExpirationDate,
		Specifications:         input.Specifications,
		ImageURL:               input.ImageURL,
	}
	computer.StatusAssignments = []model.StatusAssignment{newStatusEntry(computer.ID, status, now)}

	if err := s.repos.Computers.Add(ctx, &computer); err != nil {
		return nil, storeError(err, "create computer")
	}
	statusTransitions.WithLabelValues(status.Name).Inc()

	view, err := s.loadView(ctx, computer.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Computer created successfully: ID=%s, Serial=%s, Status=%s", computer.ID, computer.SerialNumber, status.Name)
	s.notify(ctx, InventoryNotification{
		Type:         NotificationTypeComputerCreated,
		ComputerID:   computer.ID,
		SerialNumber: computer.SerialNumber,
		Message:      fmt.Sprintf("Computer %s (%s) added to inventory", computer.SerialNumber, view.ManufacturerName),
		Metadata:     map[string]string{"status": status.Name},
	})

	return view, nil
}

// GetComputer returns a computer with its derived state.
func (s *ComputerService) GetComputer(ctx context.Context, id uuid.UUID) (*model.ComputerView, error) {
	return s.loadView(ctx, id)
}

// ListComputers returns one page of computers ordered by serial number.
func (s *ComputerService) ListComputers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.ComputerView], error) {
	result, err := s.repos.Computers.GetAllWithCurrentAssignments(ctx, params)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve computers", err)
	}

	s.logger.Printf("Retrieved %d computers (offset %d, limit %d)", len(result.Items), params.Offset, params.Limit)

	return &repository.PaginatedResult[model.ComputerView]{
		Items:      projection.ComputerViews(result.Items, s.now(), s.warrantyDays),
		TotalCount: result.TotalCount,
	}, nil
}

// UpdateComputer overwrites the descriptive fields of a computer. The serial
// is re-validated only when it or the manufacturer changes, and a status entry
// is appended only when the supplied status differs from the current one.
func (s *ComputerService) UpdateComputer(ctx context.Context, id uuid.UUID, input model.ComputerInput) (*model.ComputerView, error) {
	if errs := validation.ValidateComputerInput(&input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	existing, err := s.loadComputer(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Version != 0 && input.Version != existing.Version {
		return nil, errors.ConflictError("computer was modified by another request").
			WithDetail("current_version", existing.Version)
	}

	if input.SerialNumber != existing.SerialNumber || input.ManufacturerID != existing.ManufacturerID {
		if err := s.serials.Validate(ctx, input.SerialNumber, input.ManufacturerID); err != nil {
			return nil, err
		}
		if err := s.ensureUniqueSerial(ctx, input.SerialNumber, &id); err != nil {
			return nil, err
		}
	}

	var changes repository.TimelineChanges
	if input.Status != "" {
		entry, err := s.statusChange(ctx, *existing, input.Status)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			changes.NewStatuses = append(changes.NewStatuses, *entry)
		}
	}

	existing.ManufacturerID = input.ManufacturerID
	existing.SerialNumber = input.SerialNumber
	existing.PurchaseDate = input.PurchaseDate
	existing.WarrantyExpirationDate = input.WarrantyExpirationDate
	existing.Specifications = input.Specifications
	existing.ImageURL = input.ImageURL

	if err := s.repos.Computers.Update(ctx, existing, changes); err != nil {
		return nil, storeError(err, "update computer")
	}
	s.recordStatuses(changes)

	s.logger.Printf("Computer updated successfully: ID=%s, Version=%d", id, existing.Version)
	return s.loadView(ctx, id)
}

// UpdateComputerStatus appends a status entry when status differs from the
// current one. Setting the current status again changes nothing.
func (s *ComputerService) UpdateComputerStatus(ctx context.Context, id uuid.UUID, input model.StatusInput) (*model.ComputerView, error) {
	if errs := validation.ValidateStatusInput(&input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	existing, err := s.loadComputer(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := s.statusChange(ctx, *existing, input.Status)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return s.loadView(ctx, id)
	}

	changes := repository.TimelineChanges{NewStatuses: []model.StatusAssignment{*entry}}
	if err := s.repos.Computers.Update(ctx, existing, changes); err != nil {
		return nil, storeError(err, "update computer status")
	}
	s.recordStatuses(changes)

	s.logger.Printf("Computer status changed: ID=%s, Status=%s", id, entry.StatusName)
	s.notify(ctx, InventoryNotification{
		Type:         NotificationTypeStatusChanged,
		ComputerID:   id,
		SerialNumber: existing.SerialNumber,
		Message:      fmt.Sprintf("Computer %s is now %s", existing.SerialNumber, model.StatusDisplayName(entry.StatusName)),
		Metadata:     map[string]string{"status": entry.StatusName},
	})

	return s.loadView(ctx, id)
}

// DeleteComputer removes a computer together with both of its timelines.
func (s *ComputerService) DeleteComputer(ctx context.Context, id uuid.UUID) error {
	computer, err := s.repos.Computers.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "retrieve computer for deletion")
	}

	if err := s.repos.Computers.Remove(ctx, id); err != nil {
		return storeError(err, "delete computer")
	}

	s.logger.Printf("Computer deleted successfully: ID=%s, Serial=%s", id, computer.SerialNumber)
	s.notify(ctx, InventoryNotification{
		Type:         NotificationTypeComputerDeleted,
		ComputerID:   id,
		SerialNumber: computer.SerialNumber,
		Message:      fmt.Sprintf("Computer %s removed from inventory", computer.SerialNumber),
	})
	return nil
}

// ExpiringWarranty lists computers whose warranty ends within days from now.
// A negative value uses the configured threshold; zero lists expired ones.
func (s *ComputerService) ExpiringWarranty(ctx context.Context, days int) ([]model.ComputerView, error) {
	if days < 0 {
		days = s.warrantyDays
	}

	now := s.now()
	cutoff := projection.ExpiryCutoff(now, days)
	computers, err := s.repos.Computers.Find(ctx, repository.ComputerFilter{WarrantyExpiresBefore: &cutoff})
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve computers with expiring warranty", err)
	}

	return projection.ComputerViews(projection.ExpiringWithin(computers, days, now), now, s.warrantyDays), nil
}

// ValidateSerialNumber checks the serial format only. The manufacturer may be
// given by ID or by name.
func (s *ComputerService) ValidateSerialNumber(ctx context.Context, manufacturer, serialNumber string) (model.SerialCheck, error) {
	manufacturerID, err := s.resolveManufacturer(ctx, manufacturer)
	if err != nil {
		return model.SerialCheck{}, err
	}
	if manufacturerID == uuid.Nil {
		return model.SerialCheck{Valid: false, Reason: "manufacturer not found"}, nil
	}
	return s.serials.Check(ctx, serialNumber, manufacturerID)
}

// ListManufacturers returns the manufacturer reference data.
func (s *ComputerService) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	manufacturers, err := s.repos.Manufacturers.GetAll(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve manufacturers", err)
	}
	return manufacturers, nil
}

// ListStatuses returns the status reference data.
func (s *ComputerService) ListStatuses(ctx context.Context) ([]model.ComputerStatus, error) {
	statuses, err := s.repos.Statuses.GetAll(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve statuses", err)
	}
	return statuses, nil
}

func (s *ComputerService) resolveManufacturer(ctx context.Context, manufacturer string) (uuid.UUID, error) {
	manufacturer = strings.TrimSpace(manufacturer)
	if manufacturer == "" {
		return uuid.Nil, errors.MissingParameterError("manufacturer")
	}
	if id, err := uuid.Parse(manufacturer); err == nil {
		return id, nil
	}

	m, err := s.repos.Manufacturers.GetByName(ctx, manufacturer)
	if err != nil {
		if stderrors.Is(err, repository.ErrManufacturerNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, errors.DatabaseError("failed to retrieve manufacturer", err)
	}
	return m.ID, nil
}

func (s *ComputerService) ensureUniqueSerial(ctx context.Context, serialNumber string, exclude *uuid.UUID) error {
	unique, err := s.serials.IsUnique(ctx, serialNumber, exclude)
	if err != nil {
		return err
	}
	if !unique {
		return errors.ConflictError("computer with this serial number already exists").
			WithDetail("serial_number", serialNumber)
	}
	return nil
}

// statusChange returns the entry to append, or nil when name is already current.
func (s *ComputerService) statusChange(ctx context.Context, computer model.Computer, name string) (*model.StatusAssignment, error) {
	if current := projection.CurrentStatus(computer); current != nil && current.StatusName == name {
		return nil, nil
	}
	status, err := s.lookupStatus(ctx, name)
	if err != nil {
		return nil, err
	}
	entry := newStatusEntry(computer.ID, status, s.now())
	return &entry, nil
}

func (s *ComputerService) lookupStatus(ctx context.Context, name string) (*model.ComputerStatus, error) {
	return lookupStatus(ctx, s.repos.Statuses, name)
}

func (s *ComputerService) loadComputer(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	computer, err := s.repos.Computers.GetWithCurrentAssignment(ctx, id)
	if err != nil {
		return nil, storeError(err, "retrieve computer")
	}
	return computer, nil
}

func (s *ComputerService) loadView(ctx context.Context, id uuid.UUID) (*model.ComputerView, error) {
	computer, err := s.loadComputer(ctx, id)
	if err != nil {
		return nil, err
	}
	view := projection.ComputerView(*computer, s.now(), s.warrantyDays)
	return &view, nil
}

func lookupStatus(ctx context.Context, statuses repository.StatusRepository, name string) (*model.ComputerStatus, error) {
	status, err := statuses.GetByName(ctx, name)
	if err != nil {
		if stderrors.Is(err, repository.ErrStatusNotFound) {
			return nil, errors.NotFoundError(fmt.Sprintf("status '%s'", name))
		}
		return nil, errors.DatabaseError("failed to retrieve status", err)
	}
	return status, nil
}

func newStatusEntry(computerID uuid.UUID, status *model.ComputerStatus, at time.Time) model.StatusAssignment {
	return model.StatusAssignment{
		ID:         uuid.New(),
		ComputerID: computerID,
		StatusID:   status.ID,
		AssignDate: at,
		StatusName: status.Name,
	}
}

func (b base) recordStatuses(changes repository.TimelineChanges) {
	for _, sa := range changes.NewStatuses {
		statusTransitions.WithLabelValues(sa.StatusName).Inc()
	}
}
