package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstack/internal/core/domain"
)

func TestBorrowDecrementsAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 3, 3)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "summer reading")
	require.NoError(t, err)

	assert.Equal(t, string(domain.BorrowStatusActive), borrow.Status)
	assert.NotEmpty(t, borrow.Ref)
	assert.Equal(t, "summer reading", borrow.Notes)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, DefaultLoanPeriodDays), borrow.DueDate, time.Minute)

	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)
}

func TestBorrowSameBookTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 3, 3)

	_, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	_, err = env.borrows.Borrow(ctx, user.ID, book.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyBorrowed)

	// Counter untouched by the failed attempt
	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)
}

func TestBorrowExhaustedBookFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.createBook(t, "978-0-13-468599-1", 1, 1)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.borrows.Borrow(ctx, alice.ID, book.ID, "")
	require.NoError(t, err)

	_, err = env.borrows.Borrow(ctx, bob.ID, book.ID, "")
	assert.ErrorIs(t, err, domain.ErrBookUnavailable)

	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableCopies)
}

func TestBorrowUnknownUserOrBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	_, err := env.borrows.Borrow(ctx, 9999, book.ID, "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.borrows.Borrow(ctx, user.ID, 9999, "")
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestBorrowSoftDeletedBookFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)
	require.NoError(t, env.books.SoftDelete(ctx, book.ID))

	_, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestBorrowSoftDeletedUserFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)
	require.NoError(t, env.users.SoftDelete(ctx, user.ID))

	_, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestReturnReleasesCopyAndAppendsNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "picked up at front desk")
	require.NoError(t, err)

	returned, err := env.borrows.Return(ctx, borrow.ID, "slightly worn cover")
	require.NoError(t, err)

	assert.Equal(t, string(domain.BorrowStatusReturned), returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, "picked up at front desk | Return notes: slightly worn cover", returned.Notes)

	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestReturnWithoutPriorNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	returned, err := env.borrows.Return(ctx, borrow.ID, "all good")
	require.NoError(t, err)
	assert.Equal(t, "Return notes: all good", returned.Notes)
}

func TestReturnTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	_, err = env.borrows.Return(ctx, borrow.ID, "")
	require.NoError(t, err)

	_, err = env.borrows.Return(ctx, borrow.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)

	// No double release
	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestReturnAfterReturnFreesCopyForOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.createBook(t, "978-0-13-468599-1", 1, 1)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	borrow, err := env.borrows.Borrow(ctx, alice.ID, book.ID, "")
	require.NoError(t, err)
	_, err = env.borrows.Return(ctx, borrow.ID, "")
	require.NoError(t, err)

	_, err = env.borrows.Borrow(ctx, bob.ID, book.ID, "")
	assert.NoError(t, err)
}

func TestReborrowAfterReturn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 2, 2)

	first, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)
	_, err = env.borrows.Return(ctx, first.ID, "")
	require.NoError(t, err)

	// A closed borrow no longer counts against the one-active-loan rule
	second, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Ref, second.Ref)
}

func TestScanOverdueTransitionsAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	past := time.Now().AddDate(0, 0, DefaultLoanPeriodDays+1)

	count, err := env.borrows.ScanOverdue(ctx, past)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := env.borrows.GetByID(ctx, borrow.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.BorrowStatusOverdue), got.Status)

	count, err = env.borrows.ScanOverdue(ctx, past)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReturnOverdueBorrow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	_, err = env.borrows.ScanOverdue(ctx, time.Now().AddDate(0, 0, DefaultLoanPeriodDays+1))
	require.NoError(t, err)

	returned, err := env.borrows.Return(ctx, borrow.ID, "sorry for the delay")
	require.NoError(t, err)
	assert.Equal(t, string(domain.BorrowStatusReturned), returned.Status)

	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestDeleteOpenBorrowReleasesCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	require.NoError(t, env.borrows.Delete(ctx, borrow.ID))

	_, err = env.borrows.GetByID(ctx, borrow.ID)
	assert.ErrorIs(t, err, domain.ErrBorrowNotFound)

	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestDeleteClosedBorrowLeavesCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)
	_, err = env.borrows.Return(ctx, borrow.ID, "")
	require.NoError(t, err)

	require.NoError(t, env.borrows.Delete(ctx, borrow.ID))

	got, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestReturnAtFullCapacityFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	// Someone bumps the counters behind the ledger's back
	_, err = env.books.UpdateAvailability(ctx, book.ID, 1, 1)
	require.NoError(t, err)

	_, err = env.borrows.Return(ctx, borrow.ID, "")
	assert.ErrorIs(t, err, domain.ErrOverCapacity)

	// Rolled back: the borrow still counts as open
	got, err := env.borrows.GetByID(ctx, borrow.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
}

func TestGetOverdueDoesNotTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	past := time.Now().AddDate(0, 0, DefaultLoanPeriodDays+1)

	overdue, err := env.borrows.GetOverdue(ctx, past)
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	got, err := env.borrows.GetByID(ctx, borrow.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.BorrowStatusActive), got.Status)
}

func TestGetByStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.borrows.GetByStatus(context.Background(), domain.BorrowStatus("LOST"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, domain.IsBadRequest(err))
}

func TestBorrowQueriesByUserAndBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	book := env.createBook(t, "978-0-13-468599-1", 3, 3)

	aliceBorrow, err := env.borrows.Borrow(ctx, alice.ID, book.ID, "")
	require.NoError(t, err)
	_, err = env.borrows.Borrow(ctx, bob.ID, book.ID, "")
	require.NoError(t, err)
	_, err = env.borrows.Return(ctx, aliceBorrow.ID, "")
	require.NoError(t, err)

	byUser, err := env.borrows.GetByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	activeByUser, err := env.borrows.GetActiveByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, activeByUser)

	byBook, err := env.borrows.GetByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, byBook, 2)

	byRef, err := env.borrows.GetByRef(ctx, aliceBorrow.Ref)
	require.NoError(t, err)
	assert.Equal(t, aliceBorrow.ID, byRef.ID)
}

func TestBorrowSurvivesBookSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	book := env.createBook(t, "978-0-13-468599-1", 1, 1)

	borrow, err := env.borrows.Borrow(ctx, user.ID, book.ID, "")
	require.NoError(t, err)

	require.NoError(t, env.books.SoftDelete(ctx, book.ID))

	got, err := env.borrows.GetByID(ctx, borrow.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Book)
	assert.Equal(t, book.ISBN, got.Book.ISBN)

	// Returning a borrow of a soft-deleted book still works
	_, err = env.borrows.Return(ctx, borrow.ID, "")
	assert.NoError(t, err)
}
