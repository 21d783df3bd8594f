package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bookstack/internal/adapters/persistence/models"
)

// BookRepository defines the catalog store contract. Default lookups are
// active-only; the IncludingDeleted variants are the explicit path for
// uniqueness checks and admin views.
type BookRepository interface {
	WithTx(tx *gorm.DB) BookRepository
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error)
	ListDeleted(ctx context.Context) ([]*models.Book, error)
	ListIncludingDeleted(ctx context.Context) ([]*models.Book, error)
	ListAvailable(ctx context.Context) ([]*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	ExistsByISBNIncludingDeleted(ctx context.Context, isbn string, excludeID uint) (bool, error)
	ExistsActiveByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error)
	ReserveCopy(ctx context.Context, id uint) (bool, error)
	ReleaseCopy(ctx context.Context, id uint) (bool, error)
	SetCopies(ctx context.Context, id uint, total, available int) error
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
}

// UserRepository defines the identity store contract with the same
// soft-delete-aware lookup split as BookRepository
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListDeleted(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByUsernameIncludingDeleted(ctx context.Context, username string, excludeID uint) (bool, error)
	ExistsActiveByUsername(ctx context.Context, username string, excludeID uint) (bool, error)
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
}

// BorrowRepository defines the lending ledger contract. Borrows are never
// soft-deleted, so there is no scope split here.
type BorrowRepository interface {
	WithTx(tx *gorm.DB) BorrowRepository
	Create(ctx context.Context, borrow *models.Borrow) error
	GetByID(ctx context.Context, id uint) (*models.Borrow, error)
	GetByRef(ctx context.Context, ref string) (*models.Borrow, error)
	GetAll(ctx context.Context) ([]*models.Borrow, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.Borrow, error)
	GetByBookID(ctx context.Context, bookID uint) ([]*models.Borrow, error)
	GetByStatus(ctx context.Context, status string) ([]*models.Borrow, error)
	GetActiveByUserID(ctx context.Context, userID uint) ([]*models.Borrow, error)
	GetOverdue(ctx context.Context, now time.Time) ([]*models.Borrow, error)
	HasActiveBorrow(ctx context.Context, userID, bookID uint) (bool, error)
	MarkReturned(ctx context.Context, id uint, returnDate time.Time, notes string) (bool, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	HardDelete(ctx context.Context, id uint) error
}
