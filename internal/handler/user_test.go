package handler

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	apperrors "computer-inventory-api/pkg/errors"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	CreateUserFunc     func(ctx context.Context, input model.UserInput) (*model.UserView, error)
	GetUserFunc        func(ctx context.Context, id uuid.UUID) (*model.UserView, error)
	GetUserByEmailFunc func(ctx context.Context, email string) (*model.UserView, error)
	ListUsersFunc      func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.UserView], error)
	UpdateUserFunc     func(ctx context.Context, id uuid.UUID, input model.UserInput) (*model.UserView, error)
	DeleteUserFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *MockUserService) CreateUser(ctx context.Context, input model.UserInput) (*model.UserView, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, input)
	}
	return &model.UserView{ID: uuid.New(), FirstName: input.FirstName, LastName: input.LastName, Email: input.Email}, nil
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.UserView, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, apperrors.NotFoundError("user")
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*model.UserView, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, apperrors.NotFoundError("user")
}

func (m *MockUserService) ListUsers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.UserView], error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, params)
	}
	return &repository.PaginatedResult[model.UserView]{Items: []model.UserView{}}, nil
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uuid.UUID, input model.UserInput) (*model.UserView, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, input)
	}
	return &model.UserView{ID: id, FirstName: input.FirstName, LastName: input.LastName, Email: input.Email}, nil
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}

func createTestUserHandler() (*UserHandler, *MockUserService) {
	mockService := &MockUserService{}
	return NewUserHandler(mockService, silentLogger()), mockService
}

func createTestUserView() model.UserView {
	return model.UserView{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		CreatedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		CurrentComputers: []model.ComputerSummary{
			{ID: uuid.New(), SerialNumber: "ABC1234", ManufacturerName: "Dell"},
		},
	}
}

func TestCreateUserHandler_Success(t *testing.T) {
	handler, mockService := createTestUserHandler()

	mockService.CreateUserFunc = func(ctx context.Context, input model.UserInput) (*model.UserView, error) {
		if input.Email != "ada@example.com" {
			t.Errorf("Unexpected input: %+v", input)
		}
		view := createTestUserView()
		view.CurrentComputers = []model.ComputerSummary{}
		return &view, nil
	}

	req := createJSONRequest("POST", "/users", model.UserInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	rr := httptest.NewRecorder()

	handler.CreateUserHandler(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, rr.Code)
	}
}

func TestCreateUserHandler_DuplicateEmail(t *testing.T) {
	handler, mockService := createTestUserHandler()
	mockService.CreateUserFunc = func(ctx context.Context, input model.UserInput) (*model.UserView, error) {
		return nil, apperrors.ConflictError("user with this email already exists")
	}

	req := createJSONRequest("POST", "/users", model.UserInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	rr := httptest.NewRecorder()

	handler.CreateUserHandler(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, rr.Code)
	}
	if response := decodeError(t, rr); response.Error != "user with this email already exists" {
		t.Errorf("Unexpected error message: %s", response.Error)
	}
}

func TestGetAllUsersHandler_DefaultPagination(t *testing.T) {
	handler, mockService := createTestUserHandler()
	mockService.ListUsersFunc = func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.UserView], error) {
		if params.Offset != 0 || params.Limit != DefaultPageSize {
			t.Errorf("Expected default pagination, got %+v", params)
		}
		return &repository.PaginatedResult[model.UserView]{Items: []model.UserView{createTestUserView()}, TotalCount: 1}, nil
	}

	req, _ := http.NewRequest("GET", "/users?page_size=1000", nil)
	rr := httptest.NewRecorder()

	handler.GetAllUsersHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}

	var response struct {
		Users      []model.UserView `json:"users"`
		Pagination PaginationMeta   `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Users) != 1 || len(response.Users[0].CurrentComputers) != 1 {
		t.Errorf("Unexpected users: %+v", response.Users)
	}
	if response.Pagination.TotalPages != 1 || response.Pagination.HasNext {
		t.Errorf("Unexpected pagination: %+v", response.Pagination)
	}
}

func TestGetUserHandler(t *testing.T) {
	handler, mockService := createTestUserHandler()

	view := createTestUserView()
	mockService.GetUserFunc = func(ctx context.Context, id uuid.UUID) (*model.UserView, error) {
		if id == view.ID {
			return &view, nil
		}
		return nil, apperrors.NotFoundError("user")
	}

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"found", view.ID.String(), http.StatusOK},
		{"missing", uuid.New().String(), http.StatusNotFound},
		{"malformed", "42", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/users/"+tt.id, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rr := httptest.NewRecorder()

			handler.GetUserHandler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestGetUserByEmailHandler(t *testing.T) {
	handler, mockService := createTestUserHandler()

	view := createTestUserView()
	mockService.GetUserByEmailFunc = func(ctx context.Context, email string) (*model.UserView, error) {
		if email == view.Email {
			return &view, nil
		}
		return nil, apperrors.NotFoundError("user")
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"found", "?email=ada@example.com", http.StatusOK},
		{"trimmed", "?email=%20ada@example.com%20", http.StatusOK},
		{"unknown", "?email=bob@example.com", http.StatusNotFound},
		{"missing", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/users/by-email"+tt.query, nil)
			rr := httptest.NewRecorder()

			handler.GetUserByEmailHandler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestUpdateUserHandler_ValidationError(t *testing.T) {
	handler, mockService := createTestUserHandler()
	mockService.UpdateUserFunc = func(ctx context.Context, id uuid.UUID, input model.UserInput) (*model.UserView, error) {
		return nil, apperrors.ValidationError("invalid email format: nope")
	}

	id := uuid.New()
	req := createJSONRequest("PUT", "/users/"+id.String(), model.UserInput{FirstName: "Ada", LastName: "L", Email: "nope"})
	req = mux.SetURLVars(req, map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	handler.UpdateUserHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestDeleteUserHandler(t *testing.T) {
	withComputers := uuid.New()
	withHistory := uuid.New()

	handler, mockService := createTestUserHandler()
	mockService.DeleteUserFunc = func(ctx context.Context, id uuid.UUID) error {
		switch id {
		case withComputers:
			return apperrors.ConflictError("user has computers assigned")
		case withHistory:
			return apperrors.ConflictError("user has assignment history")
		}
		return nil
	}

	tests := []struct {
		name       string
		id         uuid.UUID
		wantStatus int
	}{
		{"no history", uuid.New(), http.StatusOK},
		{"assigned", withComputers, http.StatusConflict},
		{"history", withHistory, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("DELETE", "/users/"+tt.id.String(), nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id.String()})
			rr := httptest.NewRecorder()

			handler.DeleteUserHandler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}
