package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstack/internal/core/domain"
	"bookstack/internal/pkg/password"
)

func TestCreateUserHashesPassword(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Create(context.Background(), &CreateUserInput{
		Username: "alice",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "correct-horse-battery", user.Password)
	assert.True(t, password.Verify("correct-horse-battery", user.Password))
	assert.Equal(t, string(domain.DefaultRole), user.Role)
}

func TestCreateUserRoleNormalization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	librarian, err := env.users.Create(ctx, &CreateUserInput{
		Username: "lena",
		Password: "long-enough-pass",
		Role:     "librarian",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleLibrarian), librarian.Role)

	// Unknown roles fall back to MEMBER instead of failing registration
	stranger, err := env.users.Create(ctx, &CreateUserInput{
		Username: "sam",
		Password: "long-enough-pass",
		Role:     "SUPERVISOR",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleMember), stranger.Role)
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Create(ctx, &CreateUserInput{Username: "  ", Password: "long-enough-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.users.Create(ctx, &CreateUserInput{Username: "alice", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "alice")

	_, err := env.users.Create(ctx, &CreateUserInput{
		Username: "alice",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.True(t, domain.IsConflict(err))
}

func TestSoftDeletedUserStillBlocksUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	require.NoError(t, env.users.SoftDelete(ctx, user.ID))

	_, err := env.users.Create(ctx, &CreateUserInput{
		Username: "alice",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	// Hard delete frees the name
	require.NoError(t, env.users.HardDelete(ctx, user.ID))
	_, err = env.users.Create(ctx, &CreateUserInput{
		Username: "alice",
		Password: "another-password",
	})
	assert.NoError(t, err)
}

func TestSoftDeleteAndRestoreUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")
	require.NoError(t, env.users.SoftDelete(ctx, user.ID))

	_, err := env.users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	deleted, err := env.users.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	restored, err := env.users.Restore(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
	assert.Equal(t, "alice", restored.Username)
}

func TestRestoreActiveUserFails(t *testing.T) {
	env := newTestEnv(t)

	user := env.createUser(t, "alice")

	_, err := env.users.Restore(context.Background(), user.ID)
	assert.ErrorIs(t, err, domain.ErrNotDeleted)
}

func TestUpdateUserUsernameConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.users.Update(ctx, bob.ID, &UpdateUserInput{Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	// Keeping the same username is not a conflict
	updated, err := env.users.Update(ctx, bob.ID, &UpdateUserInput{Username: "bob", Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleAdmin), updated.Role)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")

	err := env.users.UpdatePassword(ctx, user.ID, "tiny")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, env.users.UpdatePassword(ctx, user.ID, "brand-new-password"))

	got, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("brand-new-password", got.Password))
}

func TestGetByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "alice")
	_, err := env.users.Create(ctx, &CreateUserInput{
		Username: "lena",
		Password: "long-enough-pass",
		Role:     "LIBRARIAN",
	})
	require.NoError(t, err)

	members, err := env.users.GetByRole(ctx, "member")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)
}

func TestGetByUsernameSkipsDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice")

	got, err := env.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, env.users.SoftDelete(ctx, user.ID))

	_, err = env.users.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
