package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookstack/internal/adapters/persistence/models"
	"bookstack/internal/adapters/persistence/repositories"
	"bookstack/internal/core/domain"
)

// DefaultLoanPeriodDays is used when no loan period is configured
const DefaultLoanPeriodDays = 14

// BorrowService handles the lending lifecycle. Every mutating operation runs
// inside a single database transaction, so a loan write and its counter
// adjustment commit or roll back together.
type BorrowService struct {
	db             *gorm.DB
	borrowRepo     repositories.BorrowRepository
	bookRepo       repositories.BookRepository
	userRepo       repositories.UserRepository
	loanPeriodDays int
}

// NewBorrowService creates a new borrow service
func NewBorrowService(
	db *gorm.DB,
	borrowRepo repositories.BorrowRepository,
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
	loanPeriodDays int,
) *BorrowService {
	if loanPeriodDays <= 0 {
		loanPeriodDays = DefaultLoanPeriodDays
	}
	return &BorrowService{
		db:             db,
		borrowRepo:     borrowRepo,
		bookRepo:       bookRepo,
		userRepo:       userRepo,
		loanPeriodDays: loanPeriodDays,
	}
}

// Borrow lends one copy of a book to a user. Soft-deleted users and books
// are treated as not found for new borrowing. The counter decrement is a
// conditional update, so the last copy can only go to one of two concurrent
// callers; the other gets ErrBookUnavailable.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID uint, notes string) (*models.Borrow, error) {
	var borrow *models.Borrow

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		books := s.bookRepo.WithTx(tx)
		borrows := s.borrowRepo.WithTx(tx)

		if _, err := users.GetByID(ctx, userID); err != nil {
			return asNotFound(err, domain.ErrUserNotFound)
		}
		if _, err := books.GetByID(ctx, bookID); err != nil {
			return asNotFound(err, domain.ErrBookNotFound)
		}

		// This check runs before the counter decrement, so under
		// REPEATABLE READ two truly concurrent borrows of the same
		// (user, book) can both pass it while copies remain.
		// TODO: re-check the pair after ReserveCopy serializes on the
		// book row.
		active, err := borrows.HasActiveBorrow(ctx, userID, bookID)
		if err != nil {
			return asTransient(err)
		}
		if active {
			return domain.ErrAlreadyBorrowed
		}

		reserved, err := books.ReserveCopy(ctx, bookID)
		if err != nil {
			return asTransient(err)
		}
		if !reserved {
			return domain.ErrBookUnavailable
		}

		now := time.Now()
		borrow = &models.Borrow{
			Ref:        uuid.NewString(),
			UserID:     userID,
			BookID:     bookID,
			Status:     string(domain.BorrowStatusActive),
			BorrowDate: now,
			DueDate:    now.AddDate(0, 0, s.loanPeriodDays),
			Notes:      notes,
		}
		if err := borrows.Create(ctx, borrow); err != nil {
			return asTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, borrow.ID)
}

// Return closes a borrow from ACTIVE or OVERDUE. The status-guarded update
// is the race barrier: of two concurrent returns on the same loan exactly
// one matches, the other gets ErrAlreadyReturned and no copy is released
// twice.
func (s *BorrowService) Return(ctx context.Context, borrowID uint, notes string) (*models.Borrow, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)
		borrows := s.borrowRepo.WithTx(tx)

		borrow, err := borrows.GetByID(ctx, borrowID)
		if err != nil {
			return asNotFound(err, domain.ErrBorrowNotFound)
		}

		returned, err := borrows.MarkReturned(ctx, borrowID, time.Now(), appendReturnNotes(borrow.Notes, notes))
		if err != nil {
			return asTransient(err)
		}
		if !returned {
			return domain.ErrAlreadyReturned
		}

		released, err := books.ReleaseCopy(ctx, borrow.BookID)
		if err != nil {
			return asTransient(err)
		}
		if !released {
			return fmt.Errorf("%w: book %d", domain.ErrOverCapacity, borrow.BookID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, borrowID)
}

// ScanOverdue transitions every ACTIVE borrow past its due date to OVERDUE
// and returns how many changed. Idempotent, and never touches the copy
// counters.
func (s *BorrowService) ScanOverdue(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.borrowRepo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, asTransient(err)
	}
	return count, nil
}

// Delete removes a borrow record for good. A still-open borrow holds a copy,
// so its copy is released inside the same transaction before removal.
func (s *BorrowService) Delete(ctx context.Context, borrowID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)
		borrows := s.borrowRepo.WithTx(tx)

		borrow, err := borrows.GetByID(ctx, borrowID)
		if err != nil {
			return asNotFound(err, domain.ErrBorrowNotFound)
		}

		if borrow.IsOpen() {
			released, err := books.ReleaseCopy(ctx, borrow.BookID)
			if err != nil {
				return asTransient(err)
			}
			if !released {
				return fmt.Errorf("%w: book %d", domain.ErrOverCapacity, borrow.BookID)
			}
		}

		if err := borrows.HardDelete(ctx, borrowID); err != nil {
			return asNotFound(err, domain.ErrBorrowNotFound)
		}
		return nil
	})
}

// GetByID gets a borrow record by ID
func (s *BorrowService) GetByID(ctx context.Context, id uint) (*models.Borrow, error) {
	borrow, err := s.borrowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, domain.ErrBorrowNotFound)
	}
	return borrow, nil
}

// GetByRef gets a borrow record by its reference number
func (s *BorrowService) GetByRef(ctx context.Context, ref string) (*models.Borrow, error) {
	borrow, err := s.borrowRepo.GetByRef(ctx, ref)
	if err != nil {
		return nil, asNotFound(err, domain.ErrBorrowNotFound)
	}
	return borrow, nil
}

// GetAll gets all borrow records
func (s *BorrowService) GetAll(ctx context.Context) ([]*models.Borrow, error) {
	borrows, err := s.borrowRepo.GetAll(ctx)
	if err != nil {
		return nil, asTransient(err)
	}
	return borrows, nil
}

// GetByUser gets borrow records for a user
func (s *BorrowService) GetByUser(ctx context.Context, userID uint) ([]*models.Borrow, error) {
	borrows, err := s.borrowRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, asTransient(err)
	}
	return borrows, nil
}

// GetActiveByUser gets a user's ACTIVE borrow records
func (s *BorrowService) GetActiveByUser(ctx context.Context, userID uint) ([]*models.Borrow, error) {
	borrows, err := s.borrowRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, asTransient(err)
	}
	return borrows, nil
}

// GetByBook gets borrow records for a book
func (s *BorrowService) GetByBook(ctx context.Context, bookID uint) ([]*models.Borrow, error) {
	borrows, err := s.borrowRepo.GetByBookID(ctx, bookID)
	if err != nil {
		return nil, asTransient(err)
	}
	return borrows, nil
}

// GetByStatus gets borrow records with the given status
func (s *BorrowService) GetByStatus(ctx context.Context, status domain.BorrowStatus) ([]*models.Borrow, error) {
	if !domain.ValidBorrowStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	borrows, err := s.borrowRepo.GetByStatus(ctx, string(status))
	if err != nil {
		return nil, asTransient(err)
	}
	return borrows, nil
}

// GetOverdue gets borrows past their due date that still hold a copy.
// Read-only: transitions happen only through ScanOverdue.
func (s *BorrowService) GetOverdue(ctx context.Context, now time.Time) ([]*models.Borrow, error) {
	borrows, err := s.borrowRepo.GetOverdue(ctx, now)
	if err != nil {
		return nil, asTransient(err)
	}
	return borrows, nil
}

// appendReturnNotes appends return notes without overwriting the history
// recorded at borrow time
func appendReturnNotes(existing, notes string) string {
	if notes == "" {
		return existing
	}
	if existing == "" {
		return "Return notes: " + notes
	}
	return existing + " | Return notes: " + notes
}

// asNotFound maps a missing row to the given domain error and everything
// else to the transient kind
func asNotFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return asTransient(err)
}

// asTransient wraps persistence failures so callers can tell retryable
// storage trouble apart from business rule violations
func asTransient(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrTransient, err)
}
