package repository

import (
	"context"
	"regexp"
	"strings"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// hashtagRe matches `#word` tokens at the start of the text or after
// whitespace. Group 1 is the bare tag.
var hashtagRe = regexp.MustCompile(`(?:^|\s)#(\w+)`)

// ExtractHashtags returns the distinct lowercased hashtags found in content,
// in order of first appearance.
func ExtractHashtags(content string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, m := range hashtagRe.FindAllStringSubmatch(content, -1) {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// HashtagRepository defines the interface for the hashtag index
type HashtagRepository interface {
	Record(ctx context.Context, names []string) error
	SearchPrefix(ctx context.Context, prefix string, limit int) ([]string, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

// Record upserts the given tags into the index. Known tags are skipped at the
// database level so concurrent posts never conflict.
func (r *hashtagRepository) Record(ctx context.Context, names []string) error {
	for _, name := range names {
		result := r.db.WithContext(ctx).Exec(
			`INSERT INTO hashtags (name)
			 VALUES (?)
			 ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
	}
	return nil
}

func (r *hashtagRepository) SearchPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Hashtag{}).
		Where("name ILIKE ?", strings.ToLower(prefix)+"%").
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return names, nil
}
