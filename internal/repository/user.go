package repository

import (
	"context"
	"errors"

	"chirp/internal/cache"
	"chirp/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, username string, profile *models.Profile) error
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
	Suggested(ctx context.Context, excludeIDs []uint, page, pageSize int) ([]*models.User, error)
	AutocompleteMentions(ctx context.Context, prefix string, limit int) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and an empty profile in one transaction, so every
// account has a profile row from the moment it exists.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if user.Profile == nil {
			user.Profile = &models.Profile{UserID: user.ID}
			return tx.Create(user.Profile).Error
		}
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.withFollowersCount(r.db.WithContext(ctx)).
		Preload("Profile").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(username), &user, cache.UserTTL, func() error {
		return r.withFollowersCount(r.db.WithContext(ctx)).
			Preload("Profile").
			Where("username = ?", username).
			First(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// UpdateProfile saves the profile row and drops the owner's cached user
// entry, since GetByUsername serves the profile embedded in it.
func (r *userRepository) UpdateProfile(ctx context.Context, username string, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, username)
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.Username)
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.withFollowersCount(r.db.WithContext(ctx)).
		Preload("Profile").
		Where("username ILIKE ?", "%"+query+"%").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Suggested lists accounts the viewer does not follow yet, most followed
// first so the page surfaces popular accounts.
func (r *userRepository) Suggested(ctx context.Context, excludeIDs []uint, page, pageSize int) ([]*models.User, error) {
	if page < 1 {
		page = 1
	}
	db := r.withFollowersCount(r.db.WithContext(ctx)).
		Preload("Profile").
		Where("is_active = ?", true)
	if len(excludeIDs) > 0 {
		db = db.Where("users.id NOT IN ?", excludeIDs)
	}

	var users []*models.User
	err := db.Order("followers_count DESC, users.created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// AutocompleteMentions matches active users by username, first or last name
// prefix for the composer's @mention dropdown.
func (r *userRepository) AutocompleteMentions(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	var users []*models.User
	like := prefix + "%"
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("is_active = ? AND (username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)", true, like, like, like).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// withFollowersCount annotates each row with its follower count so profile
// cards render without a second query.
func (r *userRepository) withFollowersCount(db *gorm.DB) *gorm.DB {
	return db.Select("users.*, (SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id) as followers_count")
}
