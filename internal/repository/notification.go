package repository

import (
	"context"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, page, pageSize int) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uint) error
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, page, pageSize int) ([]*models.Notification, error) {
	if page < 1 {
		page = 1
	}
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor.Profile").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

// MarkAllRead flips every unread notification for the recipient in one
// statement. Viewing the inbox clears the unread badge.
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
