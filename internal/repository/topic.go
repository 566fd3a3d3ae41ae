package repository

import (
	"context"
	"errors"

	"chirp/internal/cache"
	"chirp/internal/models"

	"gorm.io/gorm"
)

// TopicRepository defines the interface for topic data operations
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	List(ctx context.Context) ([]*models.Topic, error)
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	GetBySlug(ctx context.Context, slug string) (*models.Topic, error)
	GetByNames(ctx context.Context, names []string) ([]models.Topic, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Topic, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *topicRepository) List(ctx context.Context) ([]*models.Topic, error) {
	var topics []*models.Topic
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

func (r *topicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).First(&topic, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Topic", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &topic, nil
}

func (r *topicRepository) GetBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	var topic models.Topic
	err := cache.Aside(ctx, cache.TopicKey(slug), &topic, cache.TopicTTL, func() error {
		return r.db.WithContext(ctx).Where("slug = ?", slug).First(&topic).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Topic", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &topic, nil
}

// GetByNames resolves a set of topic names to rows; unknown names are simply
// absent from the result, which lets post creation ignore them.
func (r *topicRepository) GetByNames(ctx context.Context, names []string) ([]models.Topic, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

// Search matches topic names by substring for the search page's topic box.
func (r *topicRepository) Search(ctx context.Context, query string, limit int) ([]*models.Topic, error) {
	var topics []*models.Topic
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+query+"%").
		Order("name ASC").
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}
