package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bookstack/internal/adapters/persistence/models"
	"bookstack/internal/adapters/persistence/repositories"
	"bookstack/internal/core/domain"
	"bookstack/internal/pkg/password"
)

// UserService handles borrower identity business logic
type UserService struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, userRepo repositories.UserRepository) *UserService {
	return &UserService{db: db, userRepo: userRepo}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty"`
}

// Create registers a borrower. Like ISBNs, usernames stay reserved by
// soft-deleted records until hard deletion. An unknown role falls back to
// MEMBER.
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if !password.Validate(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, password.MinLength)
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, asTransient(err)
	}

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		taken, err := users.ExistsByUsernameIncludingDeleted(ctx, input.Username, 0)
		if err != nil {
			return asTransient(err)
		}
		if taken {
			return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, input.Username)
		}

		user = &models.User{
			Username: input.Username,
			Password: hashed,
			Role:     string(normalizeRole(input.Role)),
		}
		if err := users.Create(ctx, user); err != nil {
			return asTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID gets an active user
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, domain.ErrUserNotFound)
	}
	return user, nil
}

// GetByIDIncludingDeleted gets a user regardless of soft-delete state
func (s *UserService) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		return nil, asNotFound(err, domain.ErrUserNotFound)
	}
	return user, nil
}

// GetByUsername gets an active user by username
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, asNotFound(err, domain.ErrUserNotFound)
	}
	return user, nil
}

// List lists active users with pagination
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, asTransient(err)
	}
	return users, total, nil
}

// ListDeleted lists soft-deleted users
func (s *UserService) ListDeleted(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.ListDeleted(ctx)
	if err != nil {
		return nil, asTransient(err)
	}
	return users, nil
}

// GetByRole lists active users with the given role
func (s *UserService) GetByRole(ctx context.Context, role string) ([]*models.User, error) {
	users, err := s.userRepo.ListByRole(ctx, string(normalizeRole(role)))
	if err != nil {
		return nil, asTransient(err)
	}
	return users, nil
}

// UpdateUserInput represents update user input. An empty password leaves
// the stored hash untouched.
type UpdateUserInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Update updates an active user. Changing the username re-runs the
// including-deleted uniqueness check against the new value.
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		var err error
		user, err = users.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err, domain.ErrUserNotFound)
		}

		if user.Username != input.Username {
			taken, err := users.ExistsByUsernameIncludingDeleted(ctx, input.Username, user.ID)
			if err != nil {
				return asTransient(err)
			}
			if taken {
				return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, input.Username)
			}
		}

		user.Username = input.Username
		user.Role = string(normalizeRole(input.Role))
		if strings.TrimSpace(input.Password) != "" {
			if !password.Validate(input.Password) {
				return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, password.MinLength)
			}
			hashed, err := password.Hash(input.Password)
			if err != nil {
				return asTransient(err)
			}
			user.Password = hashed
		}

		if err := users.Update(ctx, user); err != nil {
			return asTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole changes a user's role
func (s *UserService) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, domain.ErrUserNotFound)
	}

	user.Role = string(normalizeRole(role))
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, asTransient(err)
	}
	return user, nil
}

// UpdatePassword changes a user's password
func (s *UserService) UpdatePassword(ctx context.Context, id uint, newPassword string) error {
	if !password.Validate(newPassword) {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, password.MinLength)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return asNotFound(err, domain.ErrUserNotFound)
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return asTransient(err)
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return asTransient(err)
	}
	return nil
}

// SoftDelete marks an active user as deleted. Historical borrows keep
// referencing the record.
func (s *UserService) SoftDelete(ctx context.Context, id uint) error {
	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		return asNotFound(err, domain.ErrUserNotFound)
	}
	return nil
}

// Restore brings a soft-deleted user back, unless another active user has
// re-registered the username since
func (s *UserService) Restore(ctx context.Context, id uint) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		var err error
		user, err = users.GetByIDIncludingDeleted(ctx, id)
		if err != nil {
			return asNotFound(err, domain.ErrUserNotFound)
		}
		if !user.IsDeleted() {
			return domain.ErrNotDeleted
		}

		taken, err := users.ExistsActiveByUsername(ctx, user.Username, user.ID)
		if err != nil {
			return asTransient(err)
		}
		if taken {
			return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, user.Username)
		}

		if err := users.Restore(ctx, id); err != nil {
			return asTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// HardDelete physically removes a user, deleted or not, and frees the
// username
func (s *UserService) HardDelete(ctx context.Context, id uint) error {
	if err := s.userRepo.HardDelete(ctx, id); err != nil {
		return asNotFound(err, domain.ErrUserNotFound)
	}
	return nil
}

// normalizeRole upper-cases the role and falls back to MEMBER for unknown
// values, matching registration behavior
func normalizeRole(role string) domain.Role {
	r := domain.Role(strings.ToUpper(strings.TrimSpace(role)))
	if !domain.ValidRole(r) {
		return domain.DefaultRole
	}
	return r
}
