package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookstack/internal/adapters/persistence/models"
	"bookstack/internal/adapters/persistence/repositories"
)

type testEnv struct {
	db      *gorm.DB
	books   *BookService
	users   *UserService
	borrows *BorrowService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	bookRepo := repositories.NewBookRepository(db)
	userRepo := repositories.NewUserRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)

	return &testEnv{
		db:      db,
		books:   NewBookService(db, bookRepo),
		users:   NewUserService(db, userRepo),
		borrows: NewBorrowService(db, borrowRepo, bookRepo, userRepo, DefaultLoanPeriodDays),
	}
}

func (e *testEnv) createBook(t *testing.T, isbn string, total, available int) *models.Book {
	t.Helper()

	book, err := e.books.Create(context.Background(), &BookInput{
		Title:           "Clean Architecture",
		Author:          "Robert C. Martin",
		ISBN:            isbn,
		TotalCopies:     total,
		AvailableCopies: available,
	})
	require.NoError(t, err)
	return book
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := e.users.Create(context.Background(), &CreateUserInput{
		Username: username,
		Password: "secret-pass-123",
	})
	require.NoError(t, err)
	return user
}
