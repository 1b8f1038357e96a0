package handler

import (
	"computer-inventory-api/internal/model"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

type MockReferenceService struct {
	ListManufacturersFunc func(ctx context.Context) ([]model.Manufacturer, error)
	ListStatusesFunc      func(ctx context.Context) ([]model.ComputerStatus, error)
}

func (m *MockReferenceService) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	if m.ListManufacturersFunc != nil {
		return m.ListManufacturersFunc(ctx)
	}
	return []model.Manufacturer{}, nil
}

func (m *MockReferenceService) ListStatuses(ctx context.Context) ([]model.ComputerStatus, error) {
	if m.ListStatusesFunc != nil {
		return m.ListStatusesFunc(ctx)
	}
	return []model.ComputerStatus{}, nil
}

func TestGetManufacturersHandler_SortedByName(t *testing.T) {
	svc := &MockReferenceService{
		ListManufacturersFunc: func(ctx context.Context) ([]model.Manufacturer, error) {
			return []model.Manufacturer{
				{ID: uuid.New(), Name: "Lenovo"},
				{ID: uuid.New(), Name: "Apple"},
				{ID: uuid.New(), Name: "Dell", SerialPattern: "^[A-Z0-9]{7}$"},
			}, nil
		},
	}
	handler := NewReferenceHandler(svc, nil, silentLogger())

	req, _ := http.NewRequest("GET", "/manufacturers", nil)
	rr := httptest.NewRecorder()

	handler.GetManufacturersHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}

	var response struct {
		Manufacturers []model.Manufacturer `json:"manufacturers"`
		Count         int                  `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Count != 3 {
		t.Errorf("Expected 3 manufacturers, got %d", response.Count)
	}
	if response.Manufacturers[0].Name != "Apple" || response.Manufacturers[2].Name != "Lenovo" {
		t.Errorf("Expected manufacturers sorted by name, got %+v", response.Manufacturers)
	}
}

func TestGetStatusesHandler_ServiceError(t *testing.T) {
	svc := &MockReferenceService{
		ListStatusesFunc: func(ctx context.Context) ([]model.ComputerStatus, error) {
			return nil, errors.New("connection reset")
		},
	}
	handler := NewReferenceHandler(svc, nil, silentLogger())

	req, _ := http.NewRequest("GET", "/statuses", nil)
	rr := httptest.NewRecorder()

	handler.GetStatusesHandler(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantHealth string
	}{
		{
			name:       "no checks",
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name: "all ok",
			checks: map[string]HealthCheck{
				"database": func(ctx context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name: "database down",
			checks: map[string]HealthCheck{
				"database":     func(ctx context.Context) error { return errors.New("connection refused") },
				"notification": func(ctx context.Context) error { return nil },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewReferenceHandler(&MockReferenceService{}, tt.checks, silentLogger())

			req, _ := http.NewRequest("GET", "/health", nil)
			rr := httptest.NewRecorder()

			handler.HealthHandler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, rr.Code)
			}

			var response SuccessResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			data, ok := response.Data.(map[string]interface{})
			if !ok {
				t.Fatalf("Expected health data, got %T", response.Data)
			}
			if data["status"] != tt.wantHealth {
				t.Errorf("Expected health %s, got %v", tt.wantHealth, data["status"])
			}
			if data["service"] != "computer-inventory-api" {
				t.Errorf("Unexpected service name: %v", data["service"])
			}
		})
	}
}
