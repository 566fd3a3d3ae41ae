package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PostService struct {
	postRepo    repository.PostRepository
	topicRepo   repository.TopicRepository
	hashtagRepo repository.HashtagRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	notifier    *NotificationService
}

type CreatePostInput struct {
	UserID     uint
	Content    string
	ImageURL   string
	TopicNames []string
}

type QuoteInput struct {
	UserID   uint
	ParentID uint
	Content  string
}

func NewPostService(
	postRepo repository.PostRepository,
	topicRepo repository.TopicRepository,
	hashtagRepo repository.HashtagRepository,
	commentRepo repository.CommentRepository,
	followRepo repository.FollowRepository,
	notifier *NotificationService,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		topicRepo:   topicRepo,
		hashtagRepo: hashtagRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
		notifier:    notifier,
	}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLen {
		return models.NewValidationError("Content exceeds 280 characters")
	}
	return nil
}

// CreatePost publishes an original post. Topic names that don't resolve to an
// existing topic are dropped rather than rejected, and any hashtags in the
// content are recorded for autocomplete.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.create")
	defer span.End()

	if err := validateContent(in.Content); err != nil {
		span.SetError(err)
		return nil, err
	}

	topics, err := s.topicRepo.GetByNames(ctx, in.TopicNames)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	post := &models.Post{
		UserID:   in.UserID,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		Kind:     models.PostKindOriginal,
		Topics:   topics,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	span.AddAttributes(attribute.Int("post.id", int(post.ID)))

	s.recordHashtags(ctx, in.Content)
	observability.PostsCreated.WithLabelValues(string(models.PostKindOriginal)).Inc()
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// Retweet shares parentID as-is. A user gets at most one plain retweet per
// post; quotes don't count against that.
func (s *PostService) Retweet(ctx context.Context, userID, parentID uint) (*models.Post, error) {
	parent, err := s.postRepo.GetByID(ctx, parentID, userID)
	if err != nil {
		return nil, err
	}

	exists, err := s.postRepo.HasRetweet(ctx, userID, parentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewValidationError("Post already retweeted")
	}

	post := &models.Post{
		UserID:   userID,
		Kind:     models.PostKindRetweet,
		ParentID: &parent.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.notifier.Emit(ctx, userID, parent.UserID, models.VerbRetweeted, &parent.ID)
	observability.PostsCreated.WithLabelValues(string(models.PostKindRetweet)).Inc()
	return s.postRepo.GetByID(ctx, post.ID, userID)
}

// Quote shares parentID with the user's own commentary. Unlike retweets,
// quoting the same post again is allowed.
func (s *PostService) Quote(ctx context.Context, in QuoteInput) (*models.Post, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	parent, err := s.postRepo.GetByID(ctx, in.ParentID, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   in.UserID,
		Content:  in.Content,
		Kind:     models.PostKindQuote,
		ParentID: &parent.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.recordHashtags(ctx, in.Content)
	s.notifier.Emit(ctx, in.UserID, parent.UserID, models.VerbQuoted, &parent.ID)
	observability.PostsCreated.WithLabelValues(string(models.PostKindQuote)).Inc()
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ToggleLike flips the user's like on a post and reports the new state.
// Liking notifies the author; unliking is silent.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return false, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return false, err
		}
		observability.LikeToggles.WithLabelValues("unliked").Inc()
		return false, nil
	}

	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return false, err
	}
	s.notifier.Emit(ctx, userID, post.UserID, models.VerbLiked, &post.ID)
	observability.LikeToggles.WithLabelValues("liked").Inc()
	return true, nil
}

// AddComment attaches a reply to a post and notifies its author.
func (s *PostService) AddComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, userID, post.UserID, models.VerbCommented, &post.ID)
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

func (s *PostService) PostComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// HomeTimeline pages through recent posts from the user and everyone they
// follow.
func (s *PostService) HomeTimeline(ctx context.Context, userID uint, page, pageSize int) ([]*models.Post, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.Feed(ctx, repository.FeedQuery{
		ViewerID:  userID,
		AuthorIDs: append(followingIDs, userID),
		Page:      page,
		PageSize:  pageSize,
	})
}

// SearchPosts runs a filtered feed query across all posts.
func (s *PostService) SearchPosts(ctx context.Context, q repository.FeedQuery) ([]*models.Post, error) {
	sort := q.Sort
	if sort == "" {
		sort = repository.SortRecent
	}
	span, ctx := observability.NewSpan(ctx, "post.search",
		trace.WithAttributes(attribute.String("search.sort", sort)))
	defer span.End()

	observability.SearchQueries.WithLabelValues(sort).Inc()
	posts, err := s.postRepo.Feed(ctx, q)
	if err != nil {
		span.SetError(err)
	}
	return posts, err
}

// UserPosts pages through one author's posts. A non-empty filter narrows to
// matching text and skips empty-content retweets so every hit has its own
// words to show.
func (s *PostService) UserPosts(ctx context.Context, authorID, viewerID uint, filter string, page, pageSize int) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, repository.FeedQuery{
		ViewerID:  viewerID,
		AuthorIDs: []uint{authorID},
		Text:      filter,
		SkipEmpty: filter != "",
		Page:      page,
		PageSize:  pageSize,
	})
}

// TagFeed pages through whole-word matches of #tag across all posts.
func (s *PostService) TagFeed(ctx context.Context, tag string, viewerID uint, page, pageSize int) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, repository.FeedQuery{
		ViewerID: viewerID,
		Text:     "#" + strings.TrimPrefix(tag, "#"),
		Page:     page,
		PageSize: pageSize,
	})
}

// Explore pages through everyone's posts, newest first.
func (s *PostService) Explore(ctx context.Context, viewerID uint, page, pageSize int) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, repository.FeedQuery{
		ViewerID: viewerID,
		Page:     page,
		PageSize: pageSize,
	})
}

// recordHashtags indexes the content's hashtags. A failure only costs
// autocomplete freshness, so it never fails the post.
func (s *PostService) recordHashtags(ctx context.Context, content string) {
	if tags := repository.ExtractHashtags(content); len(tags) > 0 {
		if err := s.hashtagRepo.Record(ctx, tags); err != nil {
			slog.Warn("failed to record hashtags", "tags", tags, "error", err)
		}
	}
}
