// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// Sort modes accepted by Feed.
const (
	SortRecent    = "recent"
	SortOldest    = "oldest"
	SortRelevance = "relevance"
)

// FeedQuery describes one feed/search request. Zero values mean "no filter".
type FeedQuery struct {
	// ViewerID drives the computed liked flag; 0 for anonymous browsing.
	ViewerID uint
	// AuthorIDs restricts the candidate set (home timeline: viewer + followed).
	AuthorIDs []uint
	// Text is a free-text query, or a hashtag query when it starts with '#'.
	Text string
	// TopicID filters through the post/topic association.
	TopicID uint
	// Since/Until are inclusive bounds on creation time.
	Since *time.Time
	Until *time.Time
	// Sort is one of recent (default), oldest, relevance.
	Sort string
	// SkipEmpty drops empty-content posts (pure retweets) from profile feeds.
	SkipEmpty bool

	Page     int
	PageSize int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	Feed(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	HasRetweet(ctx context.Context, userID, parentID uint) (bool, error)
	RecentContents(ctx context.Context, limit int) ([]string, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User.Profile").
		Preload("Topics").
		Preload("Parent.User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Feed assembles one page of posts for a timeline, profile, topic page or
// search. Filters compose; unset filters are skipped entirely.
func (r *postRepository) Feed(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	db := r.applyPostDetails(r.db.WithContext(ctx), q.ViewerID).
		Joins("JOIN users ON users.id = posts.user_id").
		Preload("User.Profile").
		Preload("Topics").
		Preload("Parent.User")

	if len(q.AuthorIDs) > 0 {
		db = db.Where("posts.user_id IN ?", q.AuthorIDs)
	}
	if q.SkipEmpty {
		db = db.Where("posts.content <> ''")
	}

	hasText := false
	if text := strings.TrimSpace(q.Text); text != "" {
		hasText = true
		if strings.HasPrefix(text, "#") {
			db = db.Where("posts.content ~* ?", hashtagPattern(text[1:]))
		} else {
			like := "%" + text + "%"
			db = db.Where("posts.content ILIKE ? OR users.username ILIKE ?", like, like)
		}
	}

	if q.TopicID != 0 {
		db = db.Where(
			"EXISTS(SELECT 1 FROM post_topics WHERE post_topics.post_id = posts.id AND post_topics.topic_id = ?)",
			q.TopicID,
		)
	}

	if q.Since != nil {
		db = db.Where("posts.created_at >= ?", *q.Since)
	}
	if q.Until != nil {
		db = db.Where("posts.created_at <= ?", *q.Until)
	}

	db = applyFeedSort(db, q.Sort, hasText)

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	var posts []*models.Post
	err := db.Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// hashtagPattern builds the case-insensitive regex that matches `#tag` as a
// whole word: preceded by start-of-text or whitespace and closed by a word
// boundary, so `#go` never matches `#golang`.
func hashtagPattern(tag string) string {
	return `(^|[[:space:]])#(` + regexp.QuoteMeta(strings.ToLower(tag)) + `)\y`
}

// applyFeedSort appends the ORDER BY for the requested sort mode. Relevance is
// a fixed lexicographic tie-break chain over the count aliases from
// applyPostDetails, never a weighted score; without a text query it degrades
// to pure popularity ordering.
func applyFeedSort(db *gorm.DB, sort string, hasText bool) *gorm.DB {
	switch sort {
	case SortOldest:
		return db.Order("posts.created_at ASC")
	case SortRelevance:
		if hasText {
			return db.Order("topics_count DESC, likes_count DESC, retweets_count DESC, comments_count DESC, posts.created_at DESC")
		}
		return db.Order("likes_count DESC, retweets_count DESC, comments_count DESC, posts.created_at DESC")
	default: // "recent" and anything unrecognized
		return db.Order("posts.created_at DESC")
	}
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM posts children WHERE children.parent_id = posts.id AND children.deleted_at IS NULL) as retweets_count, " +
		"(SELECT COUNT(*) FROM post_topics WHERE post_topics.post_id = posts.id) as topics_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// HasRetweet reports whether the user already has a pure retweet of parentID.
func (r *postRepository) HasRetweet(ctx context.Context, userID, parentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ? AND parent_id = ? AND kind = ?", userID, parentID, models.PostKindRetweet).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// RecentContents returns the raw content of the newest posts, used by the
// topic autocomplete fallback that scans text for hashtags.
func (r *postRepository) RecentContents(ctx context.Context, limit int) ([]string, error) {
	var contents []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Order("created_at DESC").
		Limit(limit).
		Pluck("content", &contents).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return contents, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// Upsert against the (user_id, post_id) unique index so a concurrent
	// duplicate like is a no-op rather than a constraint error.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID, time.Now(),
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
