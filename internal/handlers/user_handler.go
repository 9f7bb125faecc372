package handlers

import (
	"net/http"
	"strconv"

	"hireflow/internal/repository"
	"hireflow/internal/service"
)

// UserHandler exposes the admin user management surface
type UserHandler struct {
	authService *service.AuthService
	userRepo    *repository.UserRepository
	auditRepo   *repository.AuditRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *service.AuthService, userRepo *repository.UserRepository, auditRepo *repository.AuditRepository) *UserHandler {
	return &UserHandler{authService: authService, userRepo: userRepo, auditRepo: auditRepo}
}

type createUserRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=12"`
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name" validate:"required"`
	Roles     []string `json:"roles" validate:"required,min=1,dive,oneof=hr admin interviewer"`
}

// Create godoc
// @Summary Create a user
// @Description Creates a user with the given roles
// @Tags users
// @Accept json
// @Produce json
// @Param request body createUserRequest true "New user"
// @Success 201 {object} models.UserWithRoles
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.CreateUser(req.Email, req.Password, req.FirstName, req.LastName, req.Roles)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.UserWithRoles
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// SetActive godoc
// @Summary Activate or deactivate a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body setActiveRequest true "Active flag"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/active [put]
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authService.SetUserActive(id, *req.IsActive); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type setRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=hr admin interviewer"`
}

// SetRoles godoc
// @Summary Replace a user's roles
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body setRolesRequest true "Role names"
// @Success 200 {array} models.Role
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/roles [put]
func (h *UserHandler) SetRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req setRolesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	roles, err := h.authService.SetUserRoles(id, req.Roles)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roles)
}

// ListAuditLogs godoc
// @Summary List recent audit log entries
// @Tags audit
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {array} models.AuditLog
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *UserHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.auditRepo.List(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
