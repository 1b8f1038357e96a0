package handler

import (
	"bytes"
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	apperrors "computer-inventory-api/pkg/errors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MockComputerService is a mock implementation of ComputerService
type MockComputerService struct {
	CreateComputerFunc       func(ctx context.Context, input model.ComputerInput) (*model.ComputerView, error)
	GetComputerFunc          func(ctx context.Context, id uuid.UUID) (*model.ComputerView, error)
	ListComputersFunc        func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.ComputerView], error)
	UpdateComputerFunc       func(ctx context.Context, id uuid.UUID, input model.ComputerInput) (*model.ComputerView, error)
	UpdateComputerStatusFunc func(ctx context.Context, id uuid.UUID, input model.StatusInput) (*model.ComputerView, error)
	DeleteComputerFunc       func(ctx context.Context, id uuid.UUID) error
	ExpiringWarrantyFunc     func(ctx context.Context, days int) ([]model.ComputerView, error)
	ValidateSerialNumberFunc func(ctx context.Context, manufacturer, serialNumber string) (model.SerialCheck, error)
}

func (m *MockComputerService) CreateComputer(ctx context.Context, input model.ComputerInput) (*model.ComputerView, error) {
	if m.CreateComputerFunc != nil {
		return m.CreateComputerFunc(ctx, input)
	}
	return &model.ComputerView{ID: uuid.New(), SerialNumber: input.SerialNumber}, nil
}

func (m *MockComputerService) GetComputer(ctx context.Context, id uuid.UUID) (*model.ComputerView, error) {
	if m.GetComputerFunc != nil {
		return m.GetComputerFunc(ctx, id)
	}
	return nil, apperrors.NotFoundError("computer")
}

func (m *MockComputerService) ListComputers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.ComputerView], error) {
	if m.ListComputersFunc != nil {
		return m.ListComputersFunc(ctx, params)
	}
	return &repository.PaginatedResult[model.ComputerView]{Items: []model.ComputerView{}}, nil
}

func (m *MockComputerService) UpdateComputer(ctx context.Context, id uuid.UUID, input model.ComputerInput) (*model.ComputerView, error) {
	if m.UpdateComputerFunc != nil {
		return m.UpdateComputerFunc(ctx, id, input)
	}
	return &model.ComputerView{ID: id, SerialNumber: input.SerialNumber}, nil
}

func (m *MockComputerService) UpdateComputerStatus(ctx context.Context, id uuid.UUID, input model.StatusInput) (*model.ComputerView, error) {
	if m.UpdateComputerStatusFunc != nil {
		return m.UpdateComputerStatusFunc(ctx, id, input)
	}
	return &model.ComputerView{ID: id, Status: input.Status}, nil
}

func (m *MockComputerService) DeleteComputer(ctx context.Context, id uuid.UUID) error {
	if m.DeleteComputerFunc != nil {
		return m.DeleteComputerFunc(ctx, id)
	}
	return nil
}

func (m *MockComputerService) ExpiringWarranty(ctx context.Context, days int) ([]model.ComputerView, error) {
	if m.ExpiringWarrantyFunc != nil {
		return m.ExpiringWarrantyFunc(ctx, days)
	}
	return []model.ComputerView{}, nil
}

func (m *MockComputerService) ValidateSerialNumber(ctx context.Context, manufacturer, serialNumber string) (model.SerialCheck, error) {
	if m.ValidateSerialNumberFunc != nil {
		return m.ValidateSerialNumberFunc(ctx, manufacturer, serialNumber)
	}
	return model.SerialCheck{Valid: true}, nil
}

// Helper functions for tests

func silentLogger() *log.Logger {
	return log.New(bytes.NewBuffer(nil), "", 0)
}

func createTestComputerView() model.ComputerView {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return model.ComputerView{
		ID:                     uuid.New(),
		ManufacturerID:         uuid.New(),
		ManufacturerName:       "Dell",
		SerialNumber:           "ABC1234",
		PurchaseDate:           now.AddDate(-1, 0, 0),
		WarrantyExpirationDate: now.AddDate(2, 0, 0),
		Status:                 model.StatusNew,
		StatusDisplayName:      "New",
		WarrantyStatus:         model.WarrantyGreen,
		Version:                1,
		CreatedAt:              now,
	}
}

func createTestHandler() (*ComputerHandler, *MockComputerService) {
	mockService := &MockComputerService{}
	return NewComputerHandler(mockService, silentLogger()), mockService
}

func createJSONRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal error response: %v", err)
	}
	return response
}

// Test CreateComputerHandler

func TestCreateComputerHandler_Success(t *testing.T) {
	handler, mockService := createTestHandler()

	manufacturerID := uuid.New()
	mockService.CreateComputerFunc = func(ctx context.Context, input model.ComputerInput) (*model.ComputerView, error) {
		if input.ManufacturerID != manufacturerID || input.SerialNumber != "ABC1234" {
			t.Errorf("Unexpected input: got %+v", input)
		}
		view := createTestComputerView()
		view.ManufacturerID = input.ManufacturerID
		return &view, nil
	}

	req := createJSONRequest("POST", "/computers", map[string]interface{}{
		"manufacturer_id":          manufacturerID,
		"serial_number":            "ABC1234",
		"purchase_date":            "2024-01-01T00:00:00Z",
		"warranty_expiration_date": "2027-01-01T00:00:00Z",
	})
	rr := httptest.NewRecorder()

	handler.CreateComputerHandler(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, rr.Code)
	}

	var response SuccessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Errorf("Failed to unmarshal response: %v", err)
	}
	if response.Message != "Computer created successfully" {
		t.Errorf("Expected success message, got %s", response.Message)
	}
	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected computer view in data, got %T", response.Data)
	}
	if data["status"] != model.StatusNew || data["warranty_status"] != string(model.WarrantyGreen) {
		t.Errorf("Expected derived fields in response, got %v", data)
	}
}

func TestCreateComputerHandler_InvalidJSON(t *testing.T) {
	handler, _ := createTestHandler()

	req, _ := http.NewRequest("POST", "/computers", strings.NewReader("invalid json"))
	rr := httptest.NewRecorder()

	handler.CreateComputerHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
	response := decodeError(t, rr)
	if !strings.Contains(response.Error, "Invalid JSON") {
		t.Errorf("Expected JSON error message, got %s", response.Error)
	}
	if response.Code != string(apperrors.ErrorCodeInvalidJSON) {
		t.Errorf("Expected code %s, got %s", apperrors.ErrorCodeInvalidJSON, response.Code)
	}
}

func TestCreateComputerHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{
			name:       "validation",
			err:        apperrors.ValidationError("format mismatch: Dell"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrorCodeValidation,
		},
		{
			name:       "duplicate serial",
			err:        apperrors.ConflictError("computer with this serial number already exists"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.ErrorCodeConflict,
		},
		{
			name:       "database",
			err:        apperrors.DatabaseError("failed to create computer", errors.New("connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrorCodeDatabase,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrorCodeInternal,
		},
		{
			name:       "timeout",
			err:        fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   apperrors.ErrorCodeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := createTestHandler()
			mockService.CreateComputerFunc = func(ctx context.Context, input model.ComputerInput) (*model.ComputerView, error) {
				return nil, tt.err
			}

			rr := httptest.NewRecorder()
			handler.CreateComputerHandler(rr, createJSONRequest("POST", "/computers", model.ComputerInput{SerialNumber: "X"}))

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}
			if response := decodeError(t, rr); response.Code != string(tt.wantCode) {
				t.Errorf("Expected code %s, got %s", tt.wantCode, response.Code)
			}
		})
	}
}

func TestCreateComputerHandler_ValidationDetails(t *testing.T) {
	handler, mockService := createTestHandler()
	mockService.CreateComputerFunc = func(ctx context.Context, input model.ComputerInput) (*model.ComputerView, error) {
		return nil, apperrors.ValidationError("serial_number is required").
			WithDetail("errors", []string{"serial_number is required"})
	}

	rr := httptest.NewRecorder()
	req := createJSONRequest("POST", "/computers", model.ComputerInput{})
	req = req.WithContext(context.WithValue(req.Context(), RequestIDKey, "req-42"))
	handler.CreateComputerHandler(rr, req)

	response := decodeError(t, rr)
	if response.Error != "serial_number is required" {
		t.Errorf("Expected validation message, got %s", response.Error)
	}
	if response.Details["errors"] == nil {
		t.Error("Expected validation details to be present")
	}
	if response.RequestID != "req-42" {
		t.Errorf("Expected request id req-42, got %q", response.RequestID)
	}
}

// Test GetAllComputersHandler

func TestGetAllComputersHandler_WithPagination(t *testing.T) {
	handler, mockService := createTestHandler()

	mockService.ListComputersFunc = func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.ComputerView], error) {
		if params.Offset != 5 || params.Limit != 5 {
			t.Errorf("Expected offset 5 limit 5, got %+v", params)
		}
		return &repository.PaginatedResult[model.ComputerView]{
			Items:      []model.ComputerView{createTestComputerView(), createTestComputerView()},
			TotalCount: 12,
		}, nil
	}

	req, _ := http.NewRequest("GET", "/computers?page=2&page_size=5", nil)
	rr := httptest.NewRecorder()

	handler.GetAllComputersHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}

	var response struct {
		Computers  []model.ComputerView `json:"computers"`
		Pagination PaginationMeta       `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Computers) != 2 {
		t.Errorf("Expected 2 computers, got %d", len(response.Computers))
	}
	if response.Pagination.TotalPages != 3 || !response.Pagination.HasNext || !response.Pagination.HasPrevious {
		t.Errorf("Unexpected pagination: %+v", response.Pagination)
	}
}

func TestGetAllComputersHandler_ServiceError(t *testing.T) {
	handler, mockService := createTestHandler()
	mockService.ListComputersFunc = func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.ComputerView], error) {
		return nil, apperrors.DatabaseError("failed to list computers", errors.New("down"))
	}

	req, _ := http.NewRequest("GET", "/computers", nil)
	rr := httptest.NewRecorder()

	handler.GetAllComputersHandler(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

// Test GetComputerHandler

func TestGetComputerHandler_Success(t *testing.T) {
	handler, mockService := createTestHandler()

	view := createTestComputerView()
	mockService.GetComputerFunc = func(ctx context.Context, id uuid.UUID) (*model.ComputerView, error) {
		if id != view.ID {
			t.Errorf("Expected ID %s, got %s", view.ID, id)
		}
		return &view, nil
	}

	req, _ := http.NewRequest("GET", "/computers/"+view.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": view.ID.String()})
	rr := httptest.NewRecorder()

	handler.GetComputerHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}

	var response model.ComputerView
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Errorf("Failed to unmarshal response: %v", err)
	}
	if response.SerialNumber != view.SerialNumber {
		t.Errorf("Expected serial %s, got %s", view.SerialNumber, response.SerialNumber)
	}
}

func TestGetComputerHandler_InvalidUUID(t *testing.T) {
	handler, _ := createTestHandler()

	req, _ := http.NewRequest("GET", "/computers/invalid-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "invalid-uuid"})
	rr := httptest.NewRecorder()

	handler.GetComputerHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if response := decodeError(t, rr); response.Error != "Invalid UUID format" {
		t.Errorf("Expected UUID error, got %s", response.Error)
	}
}

func TestGetComputerHandler_NotFound(t *testing.T) {
	handler, _ := createTestHandler()

	computerID := uuid.New()
	req, _ := http.NewRequest("GET", "/computers/"+computerID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": computerID.String()})
	rr := httptest.NewRecorder()

	handler.GetComputerHandler(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, rr.Code)
	}
}

// Test UpdateComputerHandler

func TestUpdateComputerHandler_Success(t *testing.T) {
	handler, mockService := createTestHandler()

	computerID := uuid.New()
	mockService.UpdateComputerFunc = func(ctx context.Context, id uuid.UUID, input model.ComputerInput) (*model.ComputerView, error) {
		if id != computerID {
			t.Errorf("Expected ID %s, got %s", computerID, id)
		}
		if input.Version != 3 || input.Status != model.StatusInMaintenance {
			t.Errorf("Unexpected input: %+v", input)
		}
		return &model.ComputerView{ID: id, Version: 4, Status: input.Status}, nil
	}

	req := createJSONRequest("PUT", "/computers/"+computerID.String(), model.ComputerInput{
		SerialNumber: "ABC1234",
		Status:       model.StatusInMaintenance,
		Version:      3,
	})
	req = mux.SetURLVars(req, map[string]string{"id": computerID.String()})
	rr := httptest.NewRecorder()

	handler.UpdateComputerHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestUpdateComputerHandler_VersionConflict(t *testing.T) {
	handler, mockService := createTestHandler()
	mockService.UpdateComputerFunc = func(ctx context.Context, id uuid.UUID, input model.ComputerInput) (*model.ComputerView, error) {
		return nil, apperrors.ConflictError("computer was modified by another request")
	}

	computerID := uuid.New()
	req := createJSONRequest("PUT", "/computers/"+computerID.String(), model.ComputerInput{Version: 1})
	req = mux.SetURLVars(req, map[string]string{"id": computerID.String()})
	rr := httptest.NewRecorder()

	handler.UpdateComputerHandler(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, rr.Code)
	}
}

// Test UpdateComputerStatusHandler

func TestUpdateComputerStatusHandler(t *testing.T) {
	handler, mockService := createTestHandler()

	computerID := uuid.New()
	mockService.UpdateComputerStatusFunc = func(ctx context.Context, id uuid.UUID, input model.StatusInput) (*model.ComputerView, error) {
		if input.Status == "lost" {
			return nil, apperrors.NotFoundError("status 'lost'")
		}
		return &model.ComputerView{ID: id, Status: input.Status}, nil
	}

	tests := []struct {
		status     string
		wantStatus int
	}{
		{model.StatusRetired, http.StatusOK},
		{"lost", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			req := createJSONRequest("PUT", "/computers/"+computerID.String()+"/status", model.StatusInput{Status: tt.status})
			req = mux.SetURLVars(req, map[string]string{"id": computerID.String()})
			rr := httptest.NewRecorder()

			handler.UpdateComputerStatusHandler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

// Test DeleteComputerHandler

func TestDeleteComputerHandler_Success(t *testing.T) {
	handler, mockService := createTestHandler()

	computerID := uuid.New()
	deleted := false
	mockService.DeleteComputerFunc = func(ctx context.Context, id uuid.UUID) error {
		deleted = id == computerID
		return nil
	}

	req, _ := http.NewRequest("DELETE", "/computers/"+computerID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": computerID.String()})
	rr := httptest.NewRecorder()

	handler.DeleteComputerHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	if !deleted {
		t.Error("Expected DeleteComputer to be called with the path ID")
	}
}

func TestDeleteComputerHandler_Assigned(t *testing.T) {
	handler, mockService := createTestHandler()
	mockService.DeleteComputerFunc = func(ctx context.Context, id uuid.UUID) error {
		return apperrors.ConflictError("computer is currently assigned")
	}

	computerID := uuid.New()
	req, _ := http.NewRequest("DELETE", "/computers/"+computerID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": computerID.String()})
	rr := httptest.NewRecorder()

	handler.DeleteComputerHandler(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, rr.Code)
	}
}

// Test ExpiringWarrantyHandler

func TestExpiringWarrantyHandler_Days(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantDays   int
		wantStatus int
	}{
		{name: "default threshold", query: "", wantDays: -1, wantStatus: http.StatusOK},
		{name: "explicit days", query: "?days=90", wantDays: 90, wantStatus: http.StatusOK},
		{name: "zero days", query: "?days=0", wantDays: 0, wantStatus: http.StatusOK},
		{name: "not a number", query: "?days=soon", wantStatus: http.StatusBadRequest},
		{name: "negative", query: "?days=-3", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := createTestHandler()
			called := false
			mockService.ExpiringWarrantyFunc = func(ctx context.Context, days int) ([]model.ComputerView, error) {
				called = true
				if days != tt.wantDays {
					t.Errorf("Expected days %d, got %d", tt.wantDays, days)
				}
				return []model.ComputerView{createTestComputerView()}, nil
			}

			req, _ := http.NewRequest("GET", "/computers/expiring-warranty"+tt.query, nil)
			rr := httptest.NewRecorder()

			handler.ExpiringWarrantyHandler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("Unexpected service call state: called=%v", called)
			}
		})
	}
}

// Test ValidateSerialNumberHandler

func TestValidateSerialNumberHandler(t *testing.T) {
	handler, mockService := createTestHandler()

	mockService.ValidateSerialNumberFunc = func(ctx context.Context, manufacturer, serialNumber string) (model.SerialCheck, error) {
		if manufacturer == "" {
			return model.SerialCheck{}, apperrors.MissingParameterError("manufacturer")
		}
		if manufacturer != "Dell" {
			return model.SerialCheck{Valid: false, Reason: "manufacturer not found"}, nil
		}
		if serialNumber == "ABC1234" {
			return model.SerialCheck{Valid: true}, nil
		}
		return model.SerialCheck{Valid: false, Reason: "format mismatch: Dell"}, nil
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		want       model.SerialCheck
	}{
		{
			name:       "valid by name",
			query:      "?manufacturer=Dell&serial_number=ABC1234",
			wantStatus: http.StatusOK,
			want:       model.SerialCheck{Valid: true},
		},
		{
			name:       "mismatch via manufacturer_id",
			query:      "?manufacturer_id=Dell&serial_number=abc",
			wantStatus: http.StatusOK,
			want:       model.SerialCheck{Valid: false, Reason: "format mismatch: Dell"},
		},
		{
			name:       "unknown manufacturer",
			query:      "?manufacturer=Acme&serial_number=ABC1234",
			wantStatus: http.StatusOK,
			want:       model.SerialCheck{Valid: false, Reason: "manufacturer not found"},
		},
		{
			name:       "missing manufacturer",
			query:      "?serial_number=ABC1234",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/computers/validate-serial-number"+tt.query, nil)
			rr := httptest.NewRecorder()

			handler.ValidateSerialNumberHandler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got model.SerialCheck
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
