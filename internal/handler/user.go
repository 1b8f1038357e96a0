package handler

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/pkg/errors"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// UserHandler handles the HTTP requests for users.
type UserHandler struct {
	Service UserService
	Logger  *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserService, logger *log.Logger) *UserHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &UserHandler{
		Service:        svc,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// CreateUserHandler registers a new user.
func (h *UserHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var input model.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	user, err := h.Service.CreateUser(ctx, input)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "create user")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "User created successfully", user)
}

// GetAllUsersHandler lists users with pagination.
func (h *UserHandler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	paginationParams := h.ResponseHelper.ParsePaginationParams(r)

	result, err := h.Service.ListUsers(ctx, paginationParams.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "list users")
		return
	}

	paginationMeta := h.ResponseHelper.CalculatePaginationMeta(paginationParams, result.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreatePaginatedListResponseData("users", result.Items, paginationMeta))
}

// GetUserHandler returns a user with their current computers.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	user, err := h.Service.GetUser(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve user")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, user)
}

// GetUserByEmailHandler looks a user up by the email query parameter.
func (h *UserHandler) GetUserByEmailHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		h.ErrorHandler.HandleServiceError(w, r, errors.MissingParameterError("email"), "retrieve user")
		return
	}

	user, err := h.Service.GetUserByEmail(ctx, email)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve user")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, user)
}

// UpdateUserHandler replaces a user's name and email.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	var input model.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	user, err := h.Service.UpdateUser(ctx, id, input)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "update user")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "User updated successfully", user)
}

// DeleteUserHandler removes a user without assignment history.
func (h *UserHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	if err := h.Service.DeleteUser(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "delete user")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "User deleted successfully", map[string]string{
		"id": id.String(),
	})
}
