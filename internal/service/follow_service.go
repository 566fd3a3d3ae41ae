package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   *NotificationService
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Toggle follows username if not followed, unfollows otherwise, and reports
// the resulting state. Following yourself is a silent no-op rather than an
// error so the UI can render the button state without special-casing.
func (s *FollowService) Toggle(ctx context.Context, followerID uint, username string) (bool, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if target.ID == followerID {
		return false, nil
	}

	exists, err := s.followRepo.Exists(ctx, followerID, target.ID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.followRepo.Delete(ctx, followerID, target.ID); err != nil {
			return false, err
		}
		observability.FollowToggles.WithLabelValues("unfollowed").Inc()
		return false, nil
	}

	if err := s.followRepo.Create(ctx, followerID, target.ID); err != nil {
		return false, err
	}
	s.notifier.Emit(ctx, followerID, target.ID, models.VerbFollowed, nil)
	observability.FollowToggles.WithLabelValues("followed").Inc()
	return true, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followingID)
}

func (s *FollowService) Followers(ctx context.Context, username string) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, user.ID)
}

func (s *FollowService) Following(ctx context.Context, username string) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, user.ID)
}

func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	followers, err = s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err = s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
