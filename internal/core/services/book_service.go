package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bookstack/internal/adapters/persistence/models"
	"bookstack/internal/adapters/persistence/repositories"
	"bookstack/internal/core/domain"
)

// BookService handles catalog business logic
type BookService struct {
	db       *gorm.DB
	bookRepo repositories.BookRepository
}

// NewBookService creates a new book service
func NewBookService(db *gorm.DB, bookRepo repositories.BookRepository) *BookService {
	return &BookService{db: db, bookRepo: bookRepo}
}

// BookInput represents create/update book input
type BookInput struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	Category        string `json:"category,omitempty"`
	Language        string `json:"language,omitempty"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// Create adds a book to the catalog. The ISBN check runs against all rows
// including soft-deleted ones: an ISBN stays reserved until the record that
// holds it is hard-deleted.
func (s *BookService) Create(ctx context.Context, input *BookInput) (*models.Book, error) {
	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	var book *models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		taken, err := books.ExistsByISBNIncludingDeleted(ctx, input.ISBN, 0)
		if err != nil {
			return asTransient(err)
		}
		if taken {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateISBN, input.ISBN)
		}

		book = &models.Book{
			Title:           input.Title,
			Author:          input.Author,
			ISBN:            input.ISBN,
			Category:        input.Category,
			Language:        input.Language,
			TotalCopies:     input.TotalCopies,
			AvailableCopies: input.AvailableCopies,
		}
		if err := books.Create(ctx, book); err != nil {
			return asTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetByID gets an active book
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, domain.ErrBookNotFound)
	}
	return book, nil
}

// GetByISBN gets an active book by ISBN
func (s *BookService) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, asNotFound(err, domain.ErrBookNotFound)
	}
	return book, nil
}

// GetByIDIncludingDeleted gets a book regardless of soft-delete state
func (s *BookService) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		return nil, asNotFound(err, domain.ErrBookNotFound)
	}
	return book, nil
}

// List lists active books with pagination
func (s *BookService) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	books, total, err := s.bookRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, asTransient(err)
	}
	return books, total, nil
}

// ListDeleted lists soft-deleted books
func (s *BookService) ListDeleted(ctx context.Context) ([]*models.Book, error) {
	books, err := s.bookRepo.ListDeleted(ctx)
	if err != nil {
		return nil, asTransient(err)
	}
	return books, nil
}

// ListIncludingDeleted lists all books regardless of soft-delete state
func (s *BookService) ListIncludingDeleted(ctx context.Context) ([]*models.Book, error) {
	books, err := s.bookRepo.ListIncludingDeleted(ctx)
	if err != nil {
		return nil, asTransient(err)
	}
	return books, nil
}

// ListAvailable lists active books with at least one available copy
func (s *BookService) ListAvailable(ctx context.Context) ([]*models.Book, error) {
	books, err := s.bookRepo.ListAvailable(ctx)
	if err != nil {
		return nil, asTransient(err)
	}
	return books, nil
}

// Update updates an active book. Changing the ISBN re-runs the
// including-deleted uniqueness check against the new value.
func (s *BookService) Update(ctx context.Context, id uint, input *BookInput) (*models.Book, error) {
	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	var book *models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		var err error
		book, err = books.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err, domain.ErrBookNotFound)
		}

		if book.ISBN != input.ISBN {
			taken, err := books.ExistsByISBNIncludingDeleted(ctx, input.ISBN, book.ID)
			if err != nil {
				return asTransient(err)
			}
			if taken {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateISBN, input.ISBN)
			}
		}

		book.Title = input.Title
		book.Author = input.Author
		book.ISBN = input.ISBN
		book.Category = input.Category
		book.Language = input.Language
		book.TotalCopies = input.TotalCopies
		book.AvailableCopies = input.AvailableCopies

		if err := books.Update(ctx, book); err != nil {
			return asTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateAvailability sets the copy counters directly (admin edit)
func (s *BookService) UpdateAvailability(ctx context.Context, id uint, totalCopies, availableCopies int) (*models.Book, error) {
	if totalCopies < 0 || availableCopies < 0 {
		return nil, fmt.Errorf("%w: copy counts must be non-negative", domain.ErrInvalidInput)
	}
	if availableCopies > totalCopies {
		return nil, domain.ErrCopiesExceeded
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		if _, err := books.GetByID(ctx, id); err != nil {
			return asNotFound(err, domain.ErrBookNotFound)
		}
		if err := books.SetCopies(ctx, id, totalCopies, availableCopies); err != nil {
			return asNotFound(err, domain.ErrBookNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SoftDelete marks an active book as deleted. The book stays visible on
// including-deleted paths and through historical borrows.
func (s *BookService) SoftDelete(ctx context.Context, id uint) error {
	if err := s.bookRepo.SoftDelete(ctx, id); err != nil {
		return asNotFound(err, domain.ErrBookNotFound)
	}
	return nil
}

// Restore brings a soft-deleted book back. It fails if the book is not
// deleted, or if another active book re-registered the ISBN in the meantime.
func (s *BookService) Restore(ctx context.Context, id uint) (*models.Book, error) {
	var book *models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)

		var err error
		book, err = books.GetByIDIncludingDeleted(ctx, id)
		if err != nil {
			return asNotFound(err, domain.ErrBookNotFound)
		}
		if !book.IsDeleted() {
			return domain.ErrNotDeleted
		}

		taken, err := books.ExistsActiveByISBN(ctx, book.ISBN, book.ID)
		if err != nil {
			return asTransient(err)
		}
		if taken {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateISBN, book.ISBN)
		}

		if err := books.Restore(ctx, id); err != nil {
			return asTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// HardDelete physically removes a book, deleted or not, and frees its ISBN
func (s *BookService) HardDelete(ctx context.Context, id uint) error {
	if err := s.bookRepo.HardDelete(ctx, id); err != nil {
		return asNotFound(err, domain.ErrBookNotFound)
	}
	return nil
}

// validateBookInput checks the required fields and the counter bounds
func validateBookInput(input *BookInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: book title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Author) == "" {
		return fmt.Errorf("%w: book author is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.ISBN) == "" {
		return fmt.Errorf("%w: book ISBN is required", domain.ErrInvalidInput)
	}
	if input.TotalCopies < 0 {
		return fmt.Errorf("%w: total copies must be non-negative", domain.ErrInvalidInput)
	}
	if input.AvailableCopies < 0 {
		return fmt.Errorf("%w: available copies must be non-negative", domain.ErrInvalidInput)
	}
	if input.AvailableCopies > input.TotalCopies {
		return domain.ErrCopiesExceeded
	}
	return nil
}
