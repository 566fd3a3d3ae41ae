package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"chirp/internal/models"
	"chirp/internal/repository"
)

const maxTopicNameLen = 50

type TopicService struct {
	topicRepo repository.TopicRepository
	postRepo  repository.PostRepository
}

func NewTopicService(topicRepo repository.TopicRepository, postRepo repository.PostRepository) *TopicService {
	return &TopicService{topicRepo: topicRepo, postRepo: postRepo}
}

func (s *TopicService) List(ctx context.Context) ([]*models.Topic, error) {
	return s.topicRepo.List(ctx)
}

// Create adds a topic; the slug is derived from the name on save.
func (s *TopicService) Create(ctx context.Context, name string) (*models.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Topic name is required")
	}
	if utf8.RuneCountInString(name) > maxTopicNameLen {
		return nil, models.NewValidationError("Topic name exceeds 50 characters")
	}

	topic := &models.Topic{Name: name}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// Feed pages through the posts tagged with the topic behind slug.
func (s *TopicService) Feed(ctx context.Context, slug string, viewerID uint, page, pageSize int) (*models.Topic, []*models.Post, error) {
	topic, err := s.topicRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.postRepo.Feed(ctx, repository.FeedQuery{
		ViewerID: viewerID,
		TopicID:  topic.ID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, nil, err
	}
	return topic, posts, nil
}
