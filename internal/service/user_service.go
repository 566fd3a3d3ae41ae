package service

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/storage"
)

const maxBioLen = 180

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	images     storage.ImageStorage
}

type UpdateProfileInput struct {
	UserID    uint
	FirstName *string
	LastName  *string
	Bio       *string
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	images storage.ImageStorage,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		images:     images,
	}
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the provided fields; nil pointers leave the current
// value untouched.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > maxBioLen {
			return nil, models.NewValidationError("Bio exceeds 180 characters")
		}
		if user.Profile == nil {
			user.Profile = &models.Profile{UserID: user.ID}
		}
		user.Profile.Bio = bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if user.Profile != nil {
		if err := s.userRepo.UpdateProfile(ctx, user.Username, user.Profile); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// UpdateAvatar uploads a new avatar image, points the profile at it and
// removes the previous one from storage.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, file io.Reader, fileName string) (*models.User, error) {
	if s.images == nil {
		return nil, models.NewValidationError("Image uploads are not configured")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.UploadImage(ctx, file, "avatars", fileName)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if user.Profile == nil {
		user.Profile = &models.Profile{UserID: user.ID}
	}
	old := user.Profile.AvatarURL
	user.Profile.AvatarURL = url
	if err := s.userRepo.UpdateProfile(ctx, user.Username, user.Profile); err != nil {
		return nil, err
	}

	if old != "" {
		// Stale avatars are only storage garbage, not worth failing over.
		_ = s.images.DeleteImage(ctx, old)
	}
	return user, nil
}

// Suggested lists accounts to follow, excluding the viewer and everyone they
// already follow, most followed first.
func (s *UserService) Suggested(ctx context.Context, viewerID uint, page, pageSize int) ([]*models.User, error) {
	exclude := []uint{viewerID}
	if viewerID != 0 {
		followingIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		exclude = append(exclude, followingIDs...)
	}
	return s.userRepo.Suggested(ctx, exclude, page, pageSize)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.userRepo.Search(ctx, query, limit)
}
