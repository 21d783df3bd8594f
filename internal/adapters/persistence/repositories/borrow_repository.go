package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bookstack/internal/adapters/persistence/models"
	"bookstack/internal/core/domain"
)

// borrowRepository implements BorrowRepository
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository creates a new borrow repository
func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *borrowRepository) WithTx(tx *gorm.DB) BorrowRepository {
	return &borrowRepository{db: tx}
}

// withRelations preloads user and book with no active-only predicate, so a
// borrow keeps showing its parents after they are soft-deleted
func (r *borrowRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Book")
}

// Create creates a new borrow record
func (r *borrowRepository) Create(ctx context.Context, borrow *models.Borrow) error {
	return r.db.WithContext(ctx).Create(borrow).Error
}

// GetByID gets a borrow record by ID with relations
func (r *borrowRepository) GetByID(ctx context.Context, id uint) (*models.Borrow, error) {
	var borrow models.Borrow
	err := r.withRelations(ctx).First(&borrow, id).Error
	if err != nil {
		return nil, err
	}
	return &borrow, nil
}

// GetByRef gets a borrow record by its reference number
func (r *borrowRepository) GetByRef(ctx context.Context, ref string) (*models.Borrow, error) {
	var borrow models.Borrow
	err := r.withRelations(ctx).Where("ref = ?", ref).First(&borrow).Error
	if err != nil {
		return nil, err
	}
	return &borrow, nil
}

// GetAll gets all borrow records, newest first
func (r *borrowRepository) GetAll(ctx context.Context) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.withRelations(ctx).Order("borrow_date DESC").Find(&borrows).Error
	return borrows, err
}

// GetByUserID gets borrow records for a user
func (r *borrowRepository) GetByUserID(ctx context.Context, userID uint) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.withRelations(ctx).
		Where("user_id = ?", userID).
		Order("borrow_date DESC").
		Find(&borrows).Error
	return borrows, err
}

// GetByBookID gets borrow records for a book
func (r *borrowRepository) GetByBookID(ctx context.Context, bookID uint) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.withRelations(ctx).
		Where("book_id = ?", bookID).
		Order("borrow_date DESC").
		Find(&borrows).Error
	return borrows, err
}

// GetByStatus gets borrow records with the given status
func (r *borrowRepository) GetByStatus(ctx context.Context, status string) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.withRelations(ctx).
		Where("status = ?", status).
		Order("borrow_date DESC").
		Find(&borrows).Error
	return borrows, err
}

// GetActiveByUserID gets a user's ACTIVE borrow records
func (r *borrowRepository) GetActiveByUserID(ctx context.Context, userID uint) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.withRelations(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.BorrowStatusActive)).
		Order("borrow_date DESC").
		Find(&borrows).Error
	return borrows, err
}

// GetOverdue gets borrow records past their due date that still hold a copy.
// Pure query: status transitions happen only through MarkOverdue.
func (r *borrowRepository) GetOverdue(ctx context.Context, now time.Time) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.withRelations(ctx).
		Where("due_date < ? AND status IN ?", now,
			[]string{string(domain.BorrowStatusActive), string(domain.BorrowStatusOverdue)}).
		Order("due_date ASC").
		Find(&borrows).Error
	return borrows, err
}

// HasActiveBorrow checks for an existing ACTIVE borrow of a book by a user
func (r *borrowRepository) HasActiveBorrow(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Borrow{}).
		Where("user_id = ? AND book_id = ? AND status = ?",
			userID, bookID, string(domain.BorrowStatusActive)).
		Count(&count).Error
	return count > 0, err
}

// MarkReturned transitions a borrow to RETURNED. The status guard in the
// WHERE clause is the race barrier: of two concurrent returns only one
// matches a row, the other reports false via RowsAffected.
func (r *borrowRepository) MarkReturned(ctx context.Context, id uint, returnDate time.Time, notes string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Borrow{}).
		Where("id = ? AND status IN ?", id,
			[]string{string(domain.BorrowStatusActive), string(domain.BorrowStatusOverdue)}).
		Updates(map[string]interface{}{
			"status":      string(domain.BorrowStatusReturned),
			"return_date": returnDate,
			"notes":       notes,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkOverdue transitions every ACTIVE borrow past its due date to OVERDUE
// and returns the number of rows changed. The same status guard skips loans
// returned concurrently, and a second run right after the first changes
// nothing.
func (r *borrowRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Borrow{}).
		Where("status = ? AND due_date < ?", string(domain.BorrowStatusActive), now).
		Update("status", string(domain.BorrowStatusOverdue))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// HardDelete physically removes a borrow record
func (r *borrowRepository) HardDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Borrow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
