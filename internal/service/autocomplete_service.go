package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"chirp/internal/repository"
)

const (
	minTopicQueryLen  = 2
	maxTagQueryLen    = 30
	topicSuggestLimit = 10
	tagSuggestLimit   = 8
	recentContentScan = 50
)

// Option is one autocomplete suggestion with the raw value to insert and the
// label to display.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var contentTagRe = regexp.MustCompile(`#(\w+)`)

type AutocompleteService struct {
	topicRepo   repository.TopicRepository
	postRepo    repository.PostRepository
	hashtagRepo repository.HashtagRepository
	userRepo    repository.UserRepository
}

func NewAutocompleteService(
	topicRepo repository.TopicRepository,
	postRepo repository.PostRepository,
	hashtagRepo repository.HashtagRepository,
	userRepo repository.UserRepository,
) *AutocompleteService {
	return &AutocompleteService{
		topicRepo:   topicRepo,
		postRepo:    postRepo,
		hashtagRepo: hashtagRepo,
		userRepo:    userRepo,
	}
}

// Topics suggests topic names containing q. When no stored topic matches,
// it falls back to scanning recent post text for hashtag tokens containing
// q, so fresh tags surface before anyone files a topic for them.
func (s *AutocompleteService) Topics(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minTopicQueryLen {
		return []string{}, nil
	}

	topics, err := s.topicRepo.Search(ctx, q, topicSuggestLimit)
	if err != nil {
		return nil, err
	}
	if len(topics) > 0 {
		names := make([]string, 0, len(topics))
		for _, t := range topics {
			names = append(names, t.Name)
		}
		return names, nil
	}

	contents, err := s.postRepo.RecentContents(ctx, recentContentScan)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(q)
	seen := make(map[string]struct{})
	results := []string{}
	for _, content := range contents {
		for _, m := range contentTagRe.FindAllStringSubmatch(content, -1) {
			tag := strings.ToLower(m[1])
			if !strings.Contains(tag, needle) {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			results = append(results, tag)
			if len(results) >= topicSuggestLimit {
				return results, nil
			}
		}
	}
	return results, nil
}

// Hashtags suggests indexed hashtags by prefix.
func (s *AutocompleteService) Hashtags(ctx context.Context, q string) ([]Option, error) {
	q = truncateRunes(strings.TrimLeft(strings.TrimSpace(q), "@#"), maxTagQueryLen)
	if q == "" {
		return []Option{}, nil
	}

	names, err := s.hashtagRepo.SearchPrefix(ctx, q, tagSuggestLimit)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(names))
	for _, name := range names {
		options = append(options, Option{Value: name, Label: "#" + name})
	}
	return options, nil
}

// truncateRunes caps s at max runes without splitting a multibyte sequence.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Mentions suggests active users whose username or name starts with q.
func (s *AutocompleteService) Mentions(ctx context.Context, q string) ([]Option, error) {
	q = truncateRunes(strings.TrimLeft(strings.TrimSpace(q), "@"), maxTagQueryLen)
	if q == "" {
		return []Option{}, nil
	}

	users, err := s.userRepo.AutocompleteMentions(ctx, q, tagSuggestLimit)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(users))
	for _, u := range users {
		label := "@" + u.Username
		if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
			label += " · " + full
		}
		options = append(options, Option{Value: u.Username, Label: label})
	}
	return options, nil
}
