package service

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/projection"
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/pkg/errors"
	"computer-inventory-api/pkg/validation"
	"context"
	stderrors "errors"

	"github.com/google/uuid"
)

// UserService handles business logic for user operations
type UserService struct {
	base
	repos *repository.Store
}

// NewUserService creates a new user service
func NewUserService(repos *repository.Store, opts Options) *UserService {
	return &UserService{
		base:  newBase(opts),
		repos: repos,
	}
}

// CreateUser stores a new user with a unique email address.
func (s *UserService) CreateUser(ctx context.Context, input model.UserInput) (*model.UserView, error) {
	if errs := validation.ValidateUserInput(&input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}
	if err := s.ensureUniqueEmail(ctx, input.Email, nil); err != nil {
		return nil, err
	}

	user := model.User{
		ID:        uuid.New(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}
	if err := s.repos.Users.Add(ctx, &user); err != nil {
		return nil, storeError(err, "create user")
	}

	s.logger.Printf("User created successfully: ID=%s, Email=%s", user.ID, user.Email)
	view := projection.UserView(user)
	return &view, nil
}

// GetUser returns a user with the computers currently assigned to them.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*model.UserView, error) {
	user, err := s.repos.Users.GetWithCurrentComputers(ctx, id)
	if err != nil {
		return nil, storeError(err, "retrieve user")
	}
	view := projection.UserView(*user)
	return &view, nil
}

// GetUserByEmail looks a user up by exact email address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.UserView, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, errors.ValidationError(err.Error())
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "retrieve user")
	}
	return s.GetUser(ctx, user.ID)
}

// ListUsers returns one page of users ordered by name.
func (s *UserService) ListUsers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.UserView], error) {
	result, err := s.repos.Users.GetAllWithCurrentComputers(ctx, params)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve users", err)
	}

	s.logger.Printf("Retrieved %d users (offset %d, limit %d)", len(result.Items), params.Offset, params.Limit)

	return &repository.PaginatedResult[model.UserView]{
		Items:      projection.UserViews(result.Items),
		TotalCount: result.TotalCount,
	}, nil
}

// UpdateUser overwrites the names and email of a user.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input model.UserInput) (*model.UserView, error) {
	if errs := validation.ValidateUserInput(&input); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "retrieve user")
	}
	if input.Email != user.Email {
		if err := s.ensureUniqueEmail(ctx, input.Email, &id); err != nil {
			return nil, err
		}
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = input.Email
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, storeError(err, "update user")
	}

	s.logger.Printf("User updated successfully: ID=%s", id)
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user that no assignment refers to. Users with an open
// assignment or with assignment history are kept so that history stays intact.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.repos.Users.GetWithCurrentComputers(ctx, id)
	if err != nil {
		return storeError(err, "retrieve user for deletion")
	}
	if open := projection.OpenAssignments(user.Assignments); len(open) > 0 {
		return errors.ConflictError("user has computers assigned").
			WithDetail("open_assignments", len(open))
	}

	if err := s.repos.Users.Remove(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrUserHasAssignments) {
			return errors.ConflictError("user has assignment history")
		}
		return storeError(err, "delete user")
	}

	s.logger.Printf("User deleted successfully: ID=%s, Email=%s", id, user.Email)
	return nil
}

func (s *UserService) ensureUniqueEmail(ctx context.Context, email string, exclude *uuid.UUID) error {
	exists, err := s.repos.Users.Exists(ctx, repository.UserFilter{Email: email, ExcludeID: exclude})
	if err != nil {
		return errors.DatabaseError("failed to check email uniqueness", err)
	}
	if exists {
		return errors.ConflictError("user with this email already exists").WithDetail("email", email)
	}
	return nil
}
