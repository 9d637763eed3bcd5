package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolfees/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	authService *service.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// CreateUserRequest is the HTTP request body for creating an account.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Create handles POST /v1/users
func (h *UserHandler) Create(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name, email, password and role are required"})
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), admin, service.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), admin)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, newUserResponse(u))
	}

	c.JSON(http.StatusOK, response)
}
