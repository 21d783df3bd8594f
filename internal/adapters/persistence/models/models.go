package models

import (
	"time"

	"gorm.io/gorm"

	"bookstack/internal/core/domain"
)

// Book represents the books table.
//
// DeletedAt is a plain nullable timestamp rather than gorm.DeletedAt, so no
// query is implicitly filtered: active-only reads carry their predicate
// explicitly in the repository layer.
//
// The ISBN unique index spans all rows including soft-deleted ones: a
// soft-deleted book keeps blocking its ISBN until it is hard-deleted.
type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Author          string     `gorm:"size:100;not null" json:"author"`
	ISBN            string     `gorm:"column:isbn;uniqueIndex;size:20;not null" json:"isbn"`
	Category        string     `gorm:"size:50" json:"category"`
	Language        string     `gorm:"size:30" json:"language"`
	TotalCopies     int        `gorm:"not null" json:"total_copies"`
	AvailableCopies int        `gorm:"not null" json:"available_copies"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// IsDeleted reports whether the book is soft-deleted
func (b *Book) IsDeleted() bool {
	return b.DeletedAt != nil
}

// BorrowedCopies is the number of copies currently out on loan
func (b *Book) BorrowedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

// User represents the users table. DeletedAt follows the same explicit
// soft-delete convention as Book.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	Role      string     `gorm:"size:20;not null;default:'MEMBER'" json:"role"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsDeleted reports whether the user is soft-deleted
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Borrow represents the borrows table.
//
// UserID and BookID are plain indexed references: a borrow record is kept
// even after the referenced user or book is soft- or hard-deleted, so no
// database-level cascade exists. Borrows are never soft-deleted.
type Borrow struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Ref        string     `gorm:"uniqueIndex;size:36;not null" json:"ref"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	Status     string     `gorm:"size:20;not null;index" json:"status"`
	BorrowDate time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate    time.Time  `gorm:"not null;index" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations carry no active-only predicate, so historical borrows keep
	// showing soft-deleted parents
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Borrow) TableName() string {
	return "borrows"
}

// IsOpen reports whether the borrow still holds a copy (ACTIVE or OVERDUE)
func (b *Borrow) IsOpen() bool {
	return b.Status == string(domain.BorrowStatusActive) ||
		b.Status == string(domain.BorrowStatusOverdue)
}

// BorrowResponse DTO
type BorrowResponse struct {
	ID         uint       `json:"id"`
	Ref        string     `json:"ref"`
	UserID     uint       `json:"user_id"`
	Username   string     `json:"username,omitempty"`
	BookID     uint       `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	Status     string     `json:"status"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

func (b *Borrow) ToResponse() *BorrowResponse {
	resp := &BorrowResponse{
		ID:         b.ID,
		Ref:        b.Ref,
		UserID:     b.UserID,
		BookID:     b.BookID,
		Status:     b.Status,
		BorrowDate: b.BorrowDate,
		DueDate:    b.DueDate,
		ReturnDate: b.ReturnDate,
		Notes:      b.Notes,
	}

	if b.User != nil {
		resp.Username = b.User.Username
	}
	if b.Book != nil {
		resp.BookTitle = b.Book.Title
	}

	return resp
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Book{},
		&User{},
		&Borrow{},
	)
}
