package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookstack/internal/core/services"
	"bookstack/internal/pkg/pagination"
	"bookstack/internal/pkg/response"
)

// UserHandler handles identity endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create registers a borrower
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Create(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "User created successfully", fiber.Map{
		"user": user,
	})
}

// List lists active users. ?scope=deleted exposes the deleted admin view,
// ?role filters by role.
func (h *UserHandler) List(c *fiber.Ctx) error {
	ctx := c.Context()

	if c.Query("scope") == "deleted" {
		users, err := h.userService.ListDeleted(ctx)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Success(c, "Deleted users retrieved", fiber.Map{"users": users})
	}

	if role := c.Query("role"); role != "" {
		users, err := h.userService.GetByRole(ctx, role)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Success(c, "Users retrieved", fiber.Map{"users": users})
	}

	params := pagination.GetParams(c)
	users, total, err := h.userService.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Users retrieved", pagination.NewResponse(users, params, total))
}

// GetByID gets a user
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetByID(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "User retrieved", fiber.Map{"user": user})
}

// Update updates a user
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), id, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "User updated successfully", fiber.Map{"user": user})
}

// RoleRequest represents a role change
type RoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateRole(c.Context(), id, req.Role)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "User role updated", fiber.Map{"user": user})
}

// PasswordRequest represents a password change
type PasswordRequest struct {
	Password string `json:"password"`
}

// UpdatePassword changes a user's password
func (h *UserHandler) UpdatePassword(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req PasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.UpdatePassword(c.Context(), id, req.Password); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Password updated", nil)
}

// Delete soft-deletes a user
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.SoftDelete(c.Context(), id); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "User deleted", nil)
}

// Restore brings back a soft-deleted user
func (h *UserHandler) Restore(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.Restore(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "User restored", fiber.Map{"user": user})
}

// HardDelete permanently removes a user
func (h *UserHandler) HardDelete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.HardDelete(c.Context(), id); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "User permanently deleted", nil)
}
