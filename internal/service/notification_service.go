// Package service contains the application's business logic.
package service

import (
	"context"
	"log/slog"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
)

// NotificationPublisher pushes an event toward a user's live connections.
type NotificationPublisher interface {
	PublishUser(ctx context.Context, userID uint, event notifications.Event) error
}

type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	publisher NotificationPublisher
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	publisher NotificationPublisher,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Emit records a notification and publishes it to the recipient's live
// channel. Self-directed events are dropped so users never get notified
// about their own actions. Delivery failures are logged, not returned;
// a notification must never fail the action that caused it.
func (s *NotificationService) Emit(ctx context.Context, actorID, recipientID uint, verb string, postID *uint) {
	if actorID == recipientID {
		return
	}

	n := &models.Notification{
		ActorID:     actorID,
		RecipientID: recipientID,
		Verb:        verb,
		PostID:      postID,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		slog.Error("failed to store notification", "verb", verb, "recipient_id", recipientID, "error", err)
		return
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		slog.Error("failed to load notification actor", "actor_id", actorID, "error", err)
		return
	}
	n.Actor = *actor

	if s.publisher != nil {
		if err := s.publisher.PublishUser(ctx, recipientID, notifications.EventFromNotification(n)); err != nil {
			slog.Warn("failed to publish notification", "recipient_id", recipientID, "error", err)
		}
	}
}

// Inbox returns one page of the user's notifications, newest first, and then
// marks everything unread as read. The returned page still carries the read
// flags as they were when the user opened it.
func (s *NotificationService) Inbox(ctx context.Context, userID uint, page, pageSize int) ([]*models.Notification, error) {
	list, err := s.notifRepo.ListByRecipient(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notifRepo.UnreadCount(ctx, userID)
}
