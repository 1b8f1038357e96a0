package memory

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	"context"
	"fmt"

	"github.com/google/uuid"
)

type computerRepository struct {
	s *Store
}

func matchComputer(c model.Computer, filter repository.ComputerFilter) bool {
	if filter.SerialNumber != "" && c.SerialNumber != filter.SerialNumber {
		return false
	}
	if filter.ExcludeID != nil && c.ID == *filter.ExcludeID {
		return false
	}
	if filter.ManufacturerID != nil && c.ManufacturerID != *filter.ManufacturerID {
		return false
	}
	if filter.WarrantyExpiresBefore != nil && c.WarrantyExpirationDate.After(*filter.WarrantyExpiresBefore) {
		return false
	}
	return true
}

func (r *computerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.computers[id]
	if !ok {
		return nil, repository.ErrComputerNotFound
	}
	joined := r.s.joinComputer(c, false)
	return &joined, nil
}

func (r *computerRepository) GetWithCurrentAssignment(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.computers[id]
	if !ok {
		return nil, repository.ErrComputerNotFound
	}
	joined := r.s.joinComputer(c, true)
	return &joined, nil
}

func (r *computerRepository) GetAllWithCurrentAssignments(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.Computer], error) {
	all, err := r.Find(ctx, repository.ComputerFilter{})
	if err != nil {
		return nil, err
	}
	return &repository.PaginatedResult[model.Computer]{
		Items:      page(all, params),
		TotalCount: len(all),
	}, nil
}

func (r *computerRepository) Find(ctx context.Context, filter repository.ComputerFilter) ([]model.Computer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]model.Computer, 0)
	for _, c := range r.s.computers {
		if matchComputer(c, filter) {
			result = append(result, r.s.joinComputer(c, true))
		}
	}
	sortComputers(result)
	return result, nil
}

func (r *computerRepository) Exists(ctx context.Context, filter repository.ComputerFilter) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.computers {
		if matchComputer(c, filter) {
			return true, nil
		}
	}
	return false, nil
}

func (r *computerRepository) Add(ctx context.Context, computer *model.Computer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkNewComputer(*computer, nil); err != nil {
		return err
	}
	r.s.insertComputer(computer)
	return nil
}

func (r *computerRepository) AddAll(ctx context.Context, computers []model.Computer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pending := make([]model.Computer, 0, len(computers))
	for _, c := range computers {
		if err := r.s.checkNewComputer(c, pending); err != nil {
			return err
		}
		pending = append(pending, c)
	}
	for i := range computers {
		r.s.insertComputer(&computers[i])
	}
	return nil
}

// checkNewComputer validates a computer insert against stored rows and the
// not yet inserted rows of the same batch.
func (s *Store) checkNewComputer(c model.Computer, pending []model.Computer) error {
	if _, exists := s.computers[c.ID]; exists {
		return fmt.Errorf("computer %s already exists", c.ID)
	}
	for _, other := range s.computers {
		if other.SerialNumber == c.SerialNumber {
			return repository.ErrDuplicateSerial
		}
	}
	for _, other := range pending {
		if other.SerialNumber == c.SerialNumber {
			return repository.ErrDuplicateSerial
		}
	}
	if _, ok := s.manufacturers[c.ManufacturerID]; !ok {
		return repository.ErrManufacturerNotFound
	}
	for _, sa := range c.StatusAssignments {
		if _, ok := s.statuses[sa.StatusID]; !ok {
			return repository.ErrStatusNotFound
		}
	}
	open := 0
	for _, ua := range c.UserAssignments {
		if _, ok := s.users[ua.UserID]; !ok {
			return repository.ErrUserNotFound
		}
		if ua.IsOpen() {
			open++
		}
	}
	if open > 1 {
		return repository.ErrComputerAlreadyAssigned
	}
	return nil
}

func (s *Store) insertComputer(computer *model.Computer) {
	if computer.Version == 0 {
		computer.Version = 1
	}
	if computer.CreatedAt.IsZero() {
		computer.CreatedAt = s.now()
	}
	if computer.UpdatedAt.IsZero() {
		computer.UpdatedAt = computer.CreatedAt
	}

	stored := *computer
	stored.ManufacturerName = ""
	stored.StatusAssignments = nil
	stored.UserAssignments = nil
	s.computers[stored.ID] = stored

	for _, sa := range computer.StatusAssignments {
		s.statusRows = append(s.statusRows, stripStatus(sa))
	}
	for _, ua := range computer.UserAssignments {
		s.userRows = append(s.userRows, stripAssignment(ua))
	}
}

func (r *computerRepository) Update(ctx context.Context, computer *model.Computer, changes repository.TimelineChanges) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.computers[computer.ID]
	if !ok {
		return repository.ErrComputerNotFound
	}
	if stored.Version != computer.Version {
		return repository.ErrVersionConflict
	}
	for id, other := range r.s.computers {
		if id != computer.ID && other.SerialNumber == computer.SerialNumber {
			return repository.ErrDuplicateSerial
		}
	}
	if _, ok := r.s.manufacturers[computer.ManufacturerID]; !ok {
		return repository.ErrManufacturerNotFound
	}

	closing := make(map[uuid.UUID]model.UserAssignment, len(changes.ClosedAssignments))
	for _, ua := range changes.ClosedAssignments {
		i := r.s.userRowIndex(ua.ID)
		if i < 0 || r.s.userRows[i].ComputerID != computer.ID || !r.s.userRows[i].IsOpen() || ua.EndDate == nil {
			return repository.ErrAssignmentClosed
		}
		closing[ua.ID] = ua
	}
	for _, sa := range changes.NewStatuses {
		if _, ok := r.s.statuses[sa.StatusID]; !ok {
			return repository.ErrStatusNotFound
		}
	}

	open := 0
	for _, ua := range r.s.userRows {
		if _, closed := closing[ua.ID]; ua.ComputerID == computer.ID && ua.IsOpen() && !closed {
			open++
		}
	}
	for _, ua := range changes.NewAssignments {
		if _, ok := r.s.users[ua.UserID]; !ok {
			return repository.ErrUserNotFound
		}
		if ua.IsOpen() {
			open++
		}
	}
	if open > 1 {
		return repository.ErrComputerAlreadyAssigned
	}

	stored.ManufacturerID = computer.ManufacturerID
	stored.SerialNumber = computer.SerialNumber
	stored.PurchaseDate = computer.PurchaseDate
	stored.WarrantyExpirationDate = computer.WarrantyExpirationDate
	stored.Specifications = computer.Specifications
	stored.ImageURL = computer.ImageURL
	stored.Version++
	stored.UpdatedAt = r.s.now()
	r.s.computers[stored.ID] = stored

	for id, ua := range closing {
		i := r.s.userRowIndex(id)
		end := *ua.EndDate
		r.s.userRows[i].EndDate = &end
	}
	for _, ua := range changes.NewAssignments {
		r.s.userRows = append(r.s.userRows, stripAssignment(ua))
	}
	for _, sa := range changes.NewStatuses {
		r.s.statusRows = append(r.s.statusRows, stripStatus(sa))
	}

	computer.Version = stored.Version
	computer.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) userRowIndex(id uuid.UUID) int {
	for i, ua := range s.userRows {
		if ua.ID == id {
			return i
		}
	}
	return -1
}

func (r *computerRepository) Remove(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.computers[id]; !ok {
		return repository.ErrComputerNotFound
	}
	delete(r.s.computers, id)

	statusRows := r.s.statusRows[:0]
	for _, sa := range r.s.statusRows {
		if sa.ComputerID != id {
			statusRows = append(statusRows, sa)
		}
	}
	r.s.statusRows = statusRows

	userRows := r.s.userRows[:0]
	for _, ua := range r.s.userRows {
		if ua.ComputerID != id {
			userRows = append(userRows, ua)
		}
	}
	r.s.userRows = userRows
	return nil
}
