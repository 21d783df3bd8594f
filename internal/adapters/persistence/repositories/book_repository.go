package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bookstack/internal/adapters/persistence/models"
)

// bookRepository implements BookRepository
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *bookRepository) WithTx(tx *gorm.DB) BookRepository {
	return &bookRepository{db: tx}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets an active book by ID
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Scopes(activeOnly).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByIDIncludingDeleted gets a book by ID regardless of soft-delete state
func (r *bookRepository) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByISBN gets an active book by ISBN
func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Scopes(activeOnly).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists active books with pagination
func (r *bookRepository) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Book{}).Scopes(activeOnly).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// ListDeleted lists only soft-deleted books
func (r *bookRepository) ListDeleted(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).
		Scopes(deletedOnly).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// ListIncludingDeleted lists all books regardless of soft-delete state
func (r *bookRepository) ListIncludingDeleted(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).Order("title ASC").Find(&books).Error
	return books, err
}

// ListAvailable lists active books with at least one available copy
func (r *bookRepository) ListAvailable(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Where("available_copies > 0").
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// Update updates a book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// ExistsByISBNIncludingDeleted checks ISBN uniqueness across all rows,
// soft-deleted included. excludeID=0 means no exclusion.
func (r *bookRepository) ExistsByISBNIncludingDeleted(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Book{}).Where("isbn = ?", isbn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ExistsActiveByISBN checks ISBN uniqueness among active rows only
func (r *bookRepository) ExistsActiveByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Book{}).Scopes(activeOnly).Where("isbn = ?", isbn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ReserveCopy atomically takes one available copy of an active book. The
// guard lives in the WHERE clause, so two reservations against the last copy
// can never both succeed; the losing call reports false via RowsAffected.
func (r *bookRepository) ReserveCopy(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Book{}).
		Scopes(activeOnly).
		Where("id = ? AND available_copies > 0", id).
		UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseCopy atomically puts one copy back, capped at total_copies. A false
// result means the increment would exceed capacity, which signals a missed
// reservation or a double release elsewhere and must not be clamped over.
// No active predicate here: deleting an open borrow may release against a
// soft-deleted book.
func (r *bookRepository) ReleaseCopy(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ? AND available_copies < total_copies", id).
		UpdateColumn("available_copies", gorm.Expr("available_copies + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetCopies directly sets the copy counters on an active book (admin
// availability edit)
func (r *bookRepository) SetCopies(ctx context.Context, id uint, total, available int) error {
	res := r.db.WithContext(ctx).Model(&models.Book{}).
		Scopes(activeOnly).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_copies":     total,
			"available_copies": available,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete stamps an active book as deleted. An already-deleted book
// matches no row and reports not found.
func (r *bookRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Book{}).
		Scopes(activeOnly).
		Where("id = ?", id).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore clears the deletion timestamp on a soft-deleted book
func (r *bookRepository) Restore(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}

// HardDelete physically removes a book, deleted or not, freeing its ISBN
func (r *bookRepository) HardDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
