package service

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/projection"
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/pkg/errors"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssignmentService drives the user assignment lifecycle of computers.
// Assigning and ending an assignment each write the assignment row and the
// matching status entry in one repository update.
type AssignmentService struct {
	base
	repos *repository.Store
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(repos *repository.Store, opts Options) *AssignmentService {
	return &AssignmentService{
		base:  newBase(opts),
		repos: repos,
	}
}

// AssignComputer opens an assignment of the computer to the user and marks
// the computer in use.
func (s *AssignmentService) AssignComputer(ctx context.Context, computerID, userID uuid.UUID) (*model.AssignmentView, error) {
	computer, err := s.repos.Computers.GetWithCurrentAssignment(ctx, computerID)
	if err != nil {
		return nil, storeError(err, "retrieve computer")
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "retrieve user")
	}

	if current := projection.CurrentAssignment(*computer); current != nil {
		return nil, errors.ConflictError("computer is already assigned").
			WithDetail("assignment_id", current.ID.String())
	}

	inUse, err := lookupStatus(ctx, s.repos.Statuses, model.StatusInUse)
	if err != nil {
		return nil, err
	}

	now := s.now()
	assignment := model.UserAssignment{
		ID:               uuid.New(),
		ComputerID:       computer.ID,
		UserID:           user.ID,
		StartDate:        now,
		UserFirstName:    user.FirstName,
		UserLastName:     user.LastName,
		UserEmail:        user.Email,
		SerialNumber:     computer.SerialNumber,
		ManufacturerName: computer.ManufacturerName,
	}
	changes := repository.TimelineChanges{
		NewAssignments: []model.UserAssignment{assignment},
		NewStatuses:    []model.StatusAssignment{newStatusEntry(computer.ID, inUse, now)},
	}

	if err := s.repos.Computers.Update(ctx, computer, changes); err != nil {
		return nil, storeError(err, "assign computer")
	}
	s.recordStatuses(changes)
	assignmentEvents.WithLabelValues("assigned").Inc()

	s.logger.Printf("Computer assigned: ComputerID=%s, Serial=%s, UserID=%s", computer.ID, computer.SerialNumber, user.ID)
	s.notify(ctx, InventoryNotification{
		Type:         NotificationTypeComputerAssigned,
		ComputerID:   computer.ID,
		SerialNumber: computer.SerialNumber,
		UserEmail:    user.Email,
		Message:      fmt.Sprintf("Computer %s assigned to %s", computer.SerialNumber, user.FullName()),
		Metadata:     map[string]string{"user_id": user.ID.String()},
	})

	view := projection.AssignmentView(assignment)
	return &view, nil
}

// EndAssignment closes the open assignment of the computer at endDate and
// marks the computer available from that moment. A zero endDate means now.
func (s *AssignmentService) EndAssignment(ctx context.Context, computerID uuid.UUID, endDate time.Time) (*model.AssignmentView, error) {
	computer, err := s.repos.Computers.GetWithCurrentAssignment(ctx, computerID)
	if err != nil {
		return nil, storeError(err, "retrieve computer")
	}

	current := projection.CurrentAssignment(*computer)
	if current == nil {
		return nil, errors.ConflictError("computer is not currently assigned")
	}

	if endDate.IsZero() {
		endDate = s.now()
	}
	if endDate.Before(current.StartDate) {
		return nil, errors.ValidationError("end date cannot be before the assignment start date").
			WithDetail("start_date", current.StartDate)
	}

	available, err := lookupStatus(ctx, s.repos.Statuses, model.StatusAvailable)
	if err != nil {
		return nil, err
	}

	closed := *current
	closed.EndDate = &endDate
	changes := repository.TimelineChanges{
		ClosedAssignments: []model.UserAssignment{closed},
		NewStatuses:       []model.StatusAssignment{newStatusEntry(computer.ID, available, endDate)},
	}

	if err := s.repos.Computers.Update(ctx, computer, changes); err != nil {
		return nil, storeError(err, "end assignment")
	}
	s.recordStatuses(changes)
	assignmentEvents.WithLabelValues("ended").Inc()

	s.logger.Printf("Assignment ended: ComputerID=%s, Serial=%s, UserID=%s", computer.ID, computer.SerialNumber, closed.UserID)
	s.notify(ctx, InventoryNotification{
		Type:         NotificationTypeAssignmentEnded,
		ComputerID:   computer.ID,
		SerialNumber: computer.SerialNumber,
		UserEmail:    closed.UserEmail,
		Message:      fmt.Sprintf("Computer %s returned by %s", computer.SerialNumber, closed.UserEmail),
		Metadata:     map[string]string{"user_id": closed.UserID.String()},
	})

	view := projection.AssignmentView(closed)
	return &view, nil
}

// GetCurrentAssignment returns the open assignment of a computer, or nil.
func (s *AssignmentService) GetCurrentAssignment(ctx context.Context, computerID uuid.UUID) (*model.AssignmentView, error) {
	computer, err := s.repos.Computers.GetWithCurrentAssignment(ctx, computerID)
	if err != nil {
		return nil, storeError(err, "retrieve computer")
	}

	current := projection.CurrentAssignment(*computer)
	if current == nil {
		return nil, nil
	}
	view := projection.AssignmentView(*current)
	return &view, nil
}

// ComputerHistory lists every assignment of a computer, newest first.
func (s *AssignmentService) ComputerHistory(ctx context.Context, computerID uuid.UUID) ([]model.AssignmentView, error) {
	computer, err := s.repos.Computers.GetWithCurrentAssignment(ctx, computerID)
	if err != nil {
		return nil, storeError(err, "retrieve computer")
	}
	return projection.History(computer.UserAssignments), nil
}

// UserHistory lists every assignment of a user, newest first.
func (s *AssignmentService) UserHistory(ctx context.Context, userID uuid.UUID) ([]model.AssignmentView, error) {
	user, err := s.repos.Users.GetWithAssignments(ctx, userID)
	if err != nil {
		return nil, storeError(err, "retrieve user")
	}
	return projection.History(user.Assignments), nil
}
