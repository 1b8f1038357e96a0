// Package memory keeps the whole inventory in process memory. It backs the
// "memory" database driver and the service and handler tests.
package memory

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds every table behind one lock so that multi-row writes are atomic.
// Timeline slices keep insertion order.
type Store struct {
	mu sync.RWMutex

	manufacturers map[uuid.UUID]model.Manufacturer
	statuses      map[uuid.UUID]model.ComputerStatus
	computers     map[uuid.UUID]model.Computer
	users         map[uuid.UUID]model.User

	statusRows []model.StatusAssignment
	userRows   []model.UserAssignment

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		manufacturers: make(map[uuid.UUID]model.Manufacturer),
		statuses:      make(map[uuid.UUID]model.ComputerStatus),
		computers:     make(map[uuid.UUID]model.Computer),
		users:         make(map[uuid.UUID]model.User),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Computers:     &computerRepository{s},
		Users:         &userRepository{s},
		Manufacturers: &manufacturerRepository{s},
		Statuses:      &statusRepository{s},
	}
}

// joinComputer returns a copy of c with joined fields and, when requested, timelines.
// Callers hold at least the read lock.
func (s *Store) joinComputer(c model.Computer, withTimelines bool) model.Computer {
	c.ManufacturerName = s.manufacturers[c.ManufacturerID].Name
	c.StatusAssignments = nil
	c.UserAssignments = nil
	if !withTimelines {
		return c
	}

	for _, sa := range s.statusRows {
		if sa.ComputerID == c.ID {
			c.StatusAssignments = append(c.StatusAssignments, s.joinStatus(sa))
		}
	}
	for _, ua := range s.userRows {
		if ua.ComputerID == c.ID {
			c.UserAssignments = append(c.UserAssignments, s.joinAssignment(ua))
		}
	}
	return c
}

func (s *Store) joinStatus(sa model.StatusAssignment) model.StatusAssignment {
	sa.StatusName = s.statuses[sa.StatusID].Name
	return sa
}

func (s *Store) joinAssignment(ua model.UserAssignment) model.UserAssignment {
	u := s.users[ua.UserID]
	c := s.computers[ua.ComputerID]
	ua.UserFirstName = u.FirstName
	ua.UserLastName = u.LastName
	ua.UserEmail = u.Email
	ua.SerialNumber = c.SerialNumber
	ua.ManufacturerName = s.manufacturers[c.ManufacturerID].Name
	if ua.EndDate != nil {
		end := *ua.EndDate
		ua.EndDate = &end
	}
	return ua
}

// stripAssignment drops joined fields before a row is stored.
func stripAssignment(ua model.UserAssignment) model.UserAssignment {
	stored := model.UserAssignment{
		ID:         ua.ID,
		ComputerID: ua.ComputerID,
		UserID:     ua.UserID,
		StartDate:  ua.StartDate,
	}
	if ua.EndDate != nil {
		end := *ua.EndDate
		stored.EndDate = &end
	}
	return stored
}

func stripStatus(sa model.StatusAssignment) model.StatusAssignment {
	sa.StatusName = ""
	return sa
}

func page[T any](items []T, params repository.PaginationParams) []T {
	if params.Offset >= len(items) {
		return make([]T, 0)
	}
	end := len(items)
	if params.Limit > 0 && params.Offset+params.Limit < end {
		end = params.Offset + params.Limit
	}
	return items[params.Offset:end]
}

func sortComputers(computers []model.Computer) {
	sort.Slice(computers, func(i, j int) bool {
		return computers[i].SerialNumber < computers[j].SerialNumber
	})
}

func sortUsers(users []model.User) {
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.Email < b.Email
	})
}
