package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookstack/internal/core/services"
	"bookstack/internal/pkg/pagination"
	"bookstack/internal/pkg/response"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// Create adds a book to the catalog
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Create(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book,
	})
}

// List lists active books with pagination. ?isbn= resolves a single book by
// ISBN, ?scope=deleted and ?scope=all expose the explicit including-deleted
// admin views, ?available=true the borrowable subset.
func (h *BookHandler) List(c *fiber.Ctx) error {
	ctx := c.Context()

	if isbn := c.Query("isbn"); isbn != "" {
		book, err := h.bookService.GetByISBN(ctx, isbn)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Success(c, "Book retrieved", fiber.Map{"book": book})
	}

	switch c.Query("scope") {
	case "deleted":
		books, err := h.bookService.ListDeleted(ctx)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Success(c, "Deleted books retrieved", fiber.Map{"books": books})
	case "all":
		books, err := h.bookService.ListIncludingDeleted(ctx)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Success(c, "Books retrieved", fiber.Map{"books": books})
	}

	if c.Query("available") == "true" {
		books, err := h.bookService.ListAvailable(ctx)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Success(c, "Available books retrieved", fiber.Map{"books": books})
	}

	params := pagination.GetParams(c)
	books, total, err := h.bookService.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Books retrieved", pagination.NewResponse(books, params, total))
}

// GetByID gets a book. ?scope=all also resolves soft-deleted books.
func (h *BookHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	var err error
	var book interface{}
	if c.Query("scope") == "all" {
		book, err = h.bookService.GetByIDIncludingDeleted(c.Context(), id)
	} else {
		book, err = h.bookService.GetByID(c.Context(), id)
	}
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Book retrieved", fiber.Map{"book": book})
}

// Update updates a book
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(c.Context(), id, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Book updated successfully", fiber.Map{"book": book})
}

// AvailabilityRequest represents an admin copy-count edit
type AvailabilityRequest struct {
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
}

// UpdateAvailability sets the copy counters directly
func (h *BookHandler) UpdateAvailability(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.UpdateAvailability(c.Context(), id, req.TotalCopies, req.AvailableCopies)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Book availability updated", fiber.Map{"book": book})
}

// Delete soft-deletes a book
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.SoftDelete(c.Context(), id); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Book deleted", nil)
}

// Restore brings back a soft-deleted book
func (h *BookHandler) Restore(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.Restore(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Book restored", fiber.Map{"book": book})
}

// HardDelete permanently removes a book
func (h *BookHandler) HardDelete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.HardDelete(c.Context(), id); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Book permanently deleted", nil)
}
