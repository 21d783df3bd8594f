package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"bookstack/internal/adapters/persistence/models"
	"bookstack/internal/core/domain"
	"bookstack/internal/core/services"
	"bookstack/internal/pkg/response"
)

// BorrowHandler handles lending endpoints
type BorrowHandler struct {
	borrowService *services.BorrowService
}

// NewBorrowHandler creates a new borrow handler
func NewBorrowHandler(borrowService *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

// parseID parses a uint path parameter
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// BorrowRequest represents a borrow request
type BorrowRequest struct {
	UserID uint   `json:"user_id"`
	BookID uint   `json:"book_id"`
	Notes  string `json:"notes,omitempty"`
}

// Borrow lends a book copy to a user
func (h *BorrowHandler) Borrow(c *fiber.Ctx) error {
	var req BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return response.BadRequest(c, "User ID is required")
	}
	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	borrow, err := h.borrowService.Borrow(c.Context(), req.UserID, req.BookID, req.Notes)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Book borrowed successfully", fiber.Map{
		"borrow": borrow.ToResponse(),
	})
}

// ReturnRequest represents a return request
type ReturnRequest struct {
	Notes string `json:"notes,omitempty"`
}

// Return closes a borrow
func (h *BorrowHandler) Return(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid borrow ID")
	}

	var req ReturnRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	borrow, err := h.borrowService.Return(c.Context(), id, req.Notes)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"borrow": borrow.ToResponse(),
	})
}

// Delete removes a borrow record, releasing its copy if still open
func (h *BorrowHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid borrow ID")
	}

	if err := h.borrowService.Delete(c.Context(), id); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Borrow record deleted", nil)
}

// GetByID gets a borrow record
func (h *BorrowHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid borrow ID")
	}

	borrow, err := h.borrowService.GetByID(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Borrow record retrieved", fiber.Map{
		"borrow": borrow.ToResponse(),
	})
}

// List lists borrow records, optionally filtered by user, book or status
func (h *BorrowHandler) List(c *fiber.Ctx) error {
	ctx := c.Context()

	var borrows []*models.Borrow
	var err error

	switch {
	case c.Query("user_id") != "":
		uid, perr := strconv.ParseUint(c.Query("user_id"), 10, 32)
		if perr != nil {
			return response.BadRequest(c, "Invalid user_id filter")
		}
		if c.Query("active") == "true" {
			borrows, err = h.borrowService.GetActiveByUser(ctx, uint(uid))
		} else {
			borrows, err = h.borrowService.GetByUser(ctx, uint(uid))
		}
	case c.Query("book_id") != "":
		bid, perr := strconv.ParseUint(c.Query("book_id"), 10, 32)
		if perr != nil {
			return response.BadRequest(c, "Invalid book_id filter")
		}
		borrows, err = h.borrowService.GetByBook(ctx, uint(bid))
	case c.Query("status") != "":
		borrows, err = h.borrowService.GetByStatus(ctx, domain.BorrowStatus(c.Query("status")))
	default:
		borrows, err = h.borrowService.GetAll(ctx)
	}
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Borrow records retrieved", fiber.Map{
		"borrows": toBorrowResponses(borrows),
	})
}

// Overdue lists borrows currently past their due date (read-only)
func (h *BorrowHandler) Overdue(c *fiber.Ctx) error {
	borrows, err := h.borrowService.GetOverdue(c.Context(), time.Now())
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Overdue borrows retrieved", fiber.Map{
		"borrows": toBorrowResponses(borrows),
	})
}

// ScanOverdue triggers the overdue transition sweep on demand
func (h *BorrowHandler) ScanOverdue(c *fiber.Ctx) error {
	count, err := h.borrowService.ScanOverdue(c.Context(), time.Now())
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Overdue scan completed", fiber.Map{
		"transitioned": count,
	})
}

func toBorrowResponses(borrows []*models.Borrow) []*models.BorrowResponse {
	out := make([]*models.BorrowResponse, 0, len(borrows))
	for _, b := range borrows {
		out = append(out, b.ToResponse())
	}
	return out
}
