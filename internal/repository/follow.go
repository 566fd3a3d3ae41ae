package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow edge operations
type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID uint) error
	Delete(ctx context.Context, followerID, followingID uint) error
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowingIDs(ctx context.Context, followerID uint) ([]uint, error)
	Followers(ctx context.Context, userID uint) ([]*models.User, error)
	Following(ctx context.Context, userID uint) ([]*models.User, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID uint) error {
	// Idempotent under the unique edge index; a concurrent duplicate is a no-op.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (follower_id, following_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID, time.Now(),
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// FollowingIDs returns the ids the user follows; the home timeline unions
// these with the user's own id.
func (r *followRepository) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Preload("Profile").
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Preload("Profile").
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
