package memory

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	"context"
	"fmt"

	"github.com/google/uuid"
)

type userRepository struct {
	s *Store
}

// joinUser attaches assignment rows of the user; callers hold the read lock.
func (s *Store) joinUser(u model.User, withAssignments, openOnly bool) model.User {
	u.Assignments = nil
	if !withAssignments {
		return u
	}
	for _, ua := range s.userRows {
		if ua.UserID != u.ID || (openOnly && !ua.IsOpen()) {
			continue
		}
		u.Assignments = append(u.Assignments, s.joinAssignment(ua))
	}
	return u
}

func (r *userRepository) get(id uuid.UUID, withAssignments, openOnly bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	joined := r.s.joinUser(u, withAssignments, openOnly)
	return &joined, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(id, false, false)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			joined := r.s.joinUser(u, false, false)
			return &joined, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *userRepository) GetWithCurrentComputers(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(id, true, true)
}

func (r *userRepository) GetWithAssignments(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(id, true, false)
}

func (r *userRepository) GetAllWithCurrentComputers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.User], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, r.s.joinUser(u, true, true))
	}
	sortUsers(all)

	return &repository.PaginatedResult[model.User]{
		Items:      page(all, params),
		TotalCount: len(all),
	}, nil
}

func (r *userRepository) Exists(ctx context.Context, filter repository.UserFilter) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if filter.Email != "" && u.Email != filter.Email {
			continue
		}
		if filter.ExcludeID != nil && u.ID == *filter.ExcludeID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (r *userRepository) Add(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.ID]; exists {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	for _, other := range r.s.users {
		if other.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	stored := *user
	stored.Assignments = nil
	r.s.users[stored.ID] = stored
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for id, other := range r.s.users {
		if id != user.ID && other.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.UpdatedAt = r.s.now()
	r.s.users[stored.ID] = stored

	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepository) Remove(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	for _, ua := range r.s.userRows {
		if ua.UserID == id {
			return repository.ErrUserHasAssignments
		}
	}
	delete(r.s.users, id)
	return nil
}
