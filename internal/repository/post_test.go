package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userSeq int

func createTestUser(t *testing.T, prefix string) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Username: fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano()%1_000_000, userSeq),
		Email:    fmt.Sprintf("%s_%d_%d@example.com", prefix, time.Now().UnixNano()%1_000_000, userSeq),
		Password: "hashed-password",
		IsActive: true,
	}
	require.NoError(t, NewUserRepository(testDB).Create(context.Background(), user))
	return user
}

func createTestPost(t *testing.T, user *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: user.ID, Content: content}
	require.NoError(t, NewPostRepository(testDB).Create(context.Background(), post))
	return post
}

func TestPostRepository_HashtagFeedMatchesWholeWords(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "hashtag")

	match := createTestPost(t, author, "counting down to #launch day")
	createTestPost(t, author, "new #launchpad photos")
	createTestPost(t, author, "mentions launch without a hash")

	posts, err := repo.Feed(ctx, FeedQuery{
		AuthorIDs: []uint{author.ID},
		Text:      "#launch",
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, match.ID, posts[0].ID)
}

func TestPostRepository_HashtagFeedIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "hashcase")

	created := createTestPost(t, author, "shipping soon #GoLang")

	posts, err := repo.Feed(ctx, FeedQuery{
		AuthorIDs: []uint{author.ID},
		Text:      "#golang",
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, created.ID, posts[0].ID)
}

func TestPostRepository_FeedTextMatchesContentOrUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	alice := createTestUser(t, "searchalice")
	bob := createTestUser(t, "plainbob")

	byContent := createTestPost(t, bob, "weather in searchalice town")
	byAuthor := createTestPost(t, alice, "nothing to see here")
	createTestPost(t, bob, "unrelated")

	posts, err := repo.Feed(ctx, FeedQuery{
		AuthorIDs: []uint{alice.ID, bob.ID},
		Text:      "searchalice",
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	ids := []uint{posts[0].ID, posts[1].ID}
	assert.Contains(t, ids, byContent.ID)
	assert.Contains(t, ids, byAuthor.ID)
}

func TestPostRepository_FeedDateBoundsAreInclusiveAndComposable(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "dates")

	old := createTestPost(t, author, "old post")
	require.NoError(t, testDB.Model(old).Update("created_at", time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)).Error)
	mid := createTestPost(t, author, "mid post")
	require.NoError(t, testDB.Model(mid).Update("created_at", time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)).Error)
	newer := createTestPost(t, author, "new post")
	require.NoError(t, testDB.Model(newer).Update("created_at", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)).Error)

	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	posts, err := repo.Feed(ctx, FeedQuery{
		AuthorIDs: []uint{author.ID},
		Since:     &since,
		Until:     &until,
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, mid.ID, posts[0].ID)
}

func TestPostRepository_RelevanceOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "relevance")
	fans := []*models.User{
		createTestUser(t, "fan1"),
		createTestUser(t, "fan2"),
	}

	quiet := createTestPost(t, author, "ranker quiet")
	popular := createTestPost(t, author, "ranker popular")
	for _, fan := range fans {
		require.NoError(t, repo.Like(ctx, fan.ID, popular.ID))
	}
	liked := createTestPost(t, author, "ranker liked once")
	require.NoError(t, repo.Like(ctx, fans[0].ID, liked.ID))

	posts, err := repo.Feed(ctx, FeedQuery{
		AuthorIDs: []uint{author.ID},
		Text:      "ranker",
		Sort:      SortRelevance,
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, popular.ID, posts[0].ID)
	assert.Equal(t, liked.ID, posts[1].ID)
	assert.Equal(t, quiet.ID, posts[2].ID)
	assert.Equal(t, 2, posts[0].LikesCount)
}

func TestPostRepository_FeedPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "pager")

	for i := 0; i < 7; i++ {
		createTestPost(t, author, fmt.Sprintf("page fodder %d", i))
	}

	first, err := repo.Feed(ctx, FeedQuery{AuthorIDs: []uint{author.ID}, Page: 1, PageSize: 5})
	require.NoError(t, err)
	second, err := repo.Feed(ctx, FeedQuery{AuthorIDs: []uint{author.ID}, Page: 2, PageSize: 5})
	require.NoError(t, err)

	assert.Len(t, first, 5)
	assert.Len(t, second, 2)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestPostRepository_LikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "likeauthor")
	fan := createTestUser(t, "likefan")
	post := createTestPost(t, author, "like target")

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))

	got, err := repo.GetByID(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.Liked)

	require.NoError(t, repo.Unlike(ctx, fan.ID, post.ID))
	got, err = repo.GetByID(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
	assert.False(t, got.Liked)
}

func TestPostRepository_HasRetweetIgnoresQuotes(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "rtauthor")
	sharer := createTestUser(t, "rtsharer")
	original := createTestPost(t, author, "worth sharing")

	quote := &models.Post{
		UserID:   sharer.ID,
		Content:  "adding my take",
		Kind:     models.PostKindQuote,
		ParentID: &original.ID,
	}
	require.NoError(t, repo.Create(ctx, quote))

	exists, err := repo.HasRetweet(ctx, sharer.ID, original.ID)
	require.NoError(t, err)
	assert.False(t, exists, "a quote must not count as a plain retweet")

	retweet := &models.Post{
		UserID:   sharer.ID,
		Kind:     models.PostKindRetweet,
		ParentID: &original.ID,
	}
	require.NoError(t, repo.Create(ctx, retweet))

	exists, err = repo.HasRetweet(ctx, sharer.ID, original.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostRepository_RetweetCountsChildren(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "childauthor")
	sharer := createTestUser(t, "childsharer")
	original := createTestPost(t, author, "count my shares")

	retweet := &models.Post{UserID: sharer.ID, Kind: models.PostKindRetweet, ParentID: &original.ID}
	require.NoError(t, repo.Create(ctx, retweet))
	quote := &models.Post{UserID: sharer.ID, Content: "hot take", Kind: models.PostKindQuote, ParentID: &original.ID}
	require.NoError(t, repo.Create(ctx, quote))

	got, err := repo.GetByID(ctx, original.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RetweetsCount)
}

func TestPostRepository_DeleteParentKeepsChildren(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "orphanauthor")
	sharer := createTestUser(t, "orphansharer")
	original := createTestPost(t, author, "soon gone")

	quote := &models.Post{UserID: sharer.ID, Content: "quoting", Kind: models.PostKindQuote, ParentID: &original.ID}
	require.NoError(t, repo.Create(ctx, quote))

	require.NoError(t, repo.Delete(ctx, original.ID))

	got, err := repo.GetByID(ctx, quote.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.PostKindQuote, got.Kind)
}

func TestPostRepository_SkipEmptyHidesPureRetweets(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testDB)
	author := createTestUser(t, "skipauthor")
	original := createTestPost(t, author, "original words")

	retweet := &models.Post{UserID: author.ID, Kind: models.PostKindRetweet, ParentID: &original.ID}
	require.NoError(t, repo.Create(ctx, retweet))

	posts, err := repo.Feed(ctx, FeedQuery{
		AuthorIDs: []uint{author.ID},
		SkipEmpty: true,
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, original.ID, posts[0].ID)
}
