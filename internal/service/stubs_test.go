package service

import (
	"context"
	"io"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
)

type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint, uint) (*models.Post, error)
	feedFn           func(context.Context, repository.FeedQuery) ([]*models.Post, error)
	deleteFn         func(context.Context, uint) error
	hasRetweetFn     func(context.Context, uint, uint) (bool, error)
	recentContentsFn func(context.Context, int) ([]string, error)
	isLikedFn        func(context.Context, uint, uint) (bool, error)
	likeFn           func(context.Context, uint, uint) error
	unlikeFn         func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) Feed(ctx context.Context, q repository.FeedQuery) ([]*models.Post, error) {
	return s.feedFn(ctx, q)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) HasRetweet(ctx context.Context, userID, parentID uint) (bool, error) {
	return s.hasRetweetFn(ctx, userID, parentID)
}
func (s *postRepoStub) RecentContents(ctx context.Context, limit int) ([]string, error) {
	return s.recentContentsFn(ctx, limit)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(ctx context.Context, post *models.Post) error {
			post.ID = 1
			return nil
		},
		getByIDFn: func(ctx context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		feedFn:           func(context.Context, repository.FeedQuery) ([]*models.Post, error) { return nil, nil },
		deleteFn:         func(context.Context, uint) error { return nil },
		hasRetweetFn:     func(context.Context, uint, uint) (bool, error) { return false, nil },
		recentContentsFn: func(context.Context, int) ([]string, error) { return nil, nil },
		isLikedFn:        func(context.Context, uint, uint) (bool, error) { return false, nil },
		likeFn:           func(context.Context, uint, uint) error { return nil },
		unlikeFn:         func(context.Context, uint, uint) error { return nil },
	}
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	updateProfileFn func(context.Context, string, *models.Profile) error
	updateFn        func(context.Context, *models.User) error
	searchFn        func(context.Context, string, int) ([]*models.User, error)
	suggestedFn     func(context.Context, []uint, int, int) ([]*models.User, error)
	autocompleteFn  func(context.Context, string, int) ([]*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, username string, profile *models.Profile) error {
	return s.updateProfileFn(ctx, username, profile)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit)
}
func (s *userRepoStub) Suggested(ctx context.Context, excludeIDs []uint, page, pageSize int) ([]*models.User, error) {
	return s.suggestedFn(ctx, excludeIDs, page, pageSize)
}
func (s *userRepoStub) AutocompleteMentions(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	return s.autocompleteFn(ctx, prefix, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(context.Context, *models.User) error { return nil },
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "stub"}, nil
		},
		getByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 1, Email: email}, nil
		},
		updateProfileFn: func(context.Context, string, *models.Profile) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		searchFn:        func(context.Context, string, int) ([]*models.User, error) { return nil, nil },
		suggestedFn:     func(context.Context, []uint, int, int) ([]*models.User, error) { return nil, nil },
		autocompleteFn:  func(context.Context, string, int) ([]*models.User, error) { return nil, nil },
	}
}

type followRepoStub struct {
	createFn         func(context.Context, uint, uint) error
	deleteFn         func(context.Context, uint, uint) error
	existsFn         func(context.Context, uint, uint) (bool, error)
	followingIDsFn   func(context.Context, uint) ([]uint, error)
	followersFn      func(context.Context, uint) ([]*models.User, error)
	followingFn      func(context.Context, uint) ([]*models.User, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followingID uint) error {
	return s.createFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) error {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, followerID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:         func(context.Context, uint, uint) error { return nil },
		deleteFn:         func(context.Context, uint, uint) error { return nil },
		existsFn:         func(context.Context, uint, uint) (bool, error) { return false, nil },
		followingIDsFn:   func(context.Context, uint) ([]uint, error) { return nil, nil },
		followersFn:      func(context.Context, uint) ([]*models.User, error) { return nil, nil },
		followingFn:      func(context.Context, uint) ([]*models.User, error) { return nil, nil },
		countFollowersFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countFollowingFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type topicRepoStub struct {
	createFn     func(context.Context, *models.Topic) error
	listFn       func(context.Context) ([]*models.Topic, error)
	getByIDFn    func(context.Context, uint) (*models.Topic, error)
	getBySlugFn  func(context.Context, string) (*models.Topic, error)
	getByNamesFn func(context.Context, []string) ([]models.Topic, error)
	searchFn     func(context.Context, string, int) ([]*models.Topic, error)
}

func (s *topicRepoStub) Create(ctx context.Context, topic *models.Topic) error {
	return s.createFn(ctx, topic)
}
func (s *topicRepoStub) List(ctx context.Context) ([]*models.Topic, error) {
	return s.listFn(ctx)
}
func (s *topicRepoStub) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	return s.getByIDFn(ctx, id)
}
func (s *topicRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *topicRepoStub) GetByNames(ctx context.Context, names []string) ([]models.Topic, error) {
	return s.getByNamesFn(ctx, names)
}
func (s *topicRepoStub) Search(ctx context.Context, query string, limit int) ([]*models.Topic, error) {
	return s.searchFn(ctx, query, limit)
}

func noopTopicRepo() *topicRepoStub {
	return &topicRepoStub{
		createFn: func(ctx context.Context, topic *models.Topic) error {
			topic.ID = 1
			return nil
		},
		listFn:       func(context.Context) ([]*models.Topic, error) { return nil, nil },
		getByIDFn:    func(ctx context.Context, id uint) (*models.Topic, error) { return &models.Topic{ID: id}, nil },
		getBySlugFn:  func(ctx context.Context, slug string) (*models.Topic, error) { return &models.Topic{ID: 1, Slug: slug}, nil },
		getByNamesFn: func(context.Context, []string) ([]models.Topic, error) { return nil, nil },
		searchFn:     func(context.Context, string, int) ([]*models.Topic, error) { return nil, nil },
	}
}

type imageStorageStub struct {
	uploadFn func(context.Context, io.Reader, string, string) (string, error)
	deleteFn func(context.Context, string) error
}

func (s *imageStorageStub) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	return s.uploadFn(ctx, r, folder, fileName)
}
func (s *imageStorageStub) DeleteImage(ctx context.Context, fileURL string) error {
	return s.deleteFn(ctx, fileURL)
}

type hashtagRepoStub struct {
	recordFn       func(context.Context, []string) error
	searchPrefixFn func(context.Context, string, int) ([]string, error)
}

func (s *hashtagRepoStub) Record(ctx context.Context, names []string) error {
	return s.recordFn(ctx, names)
}
func (s *hashtagRepoStub) SearchPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	return s.searchPrefixFn(ctx, prefix, limit)
}

func noopHashtagRepo() *hashtagRepoStub {
	return &hashtagRepoStub{
		recordFn:       func(context.Context, []string) error { return nil },
		searchPrefixFn: func(context.Context, string, int) ([]string, error) { return nil, nil },
	}
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(ctx context.Context, comment *models.Comment) error {
			comment.ID = 1
			return nil
		},
		getByIDFn:    func(ctx context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(context.Context, uint) error { return nil },
	}
}

type notifRepoStub struct {
	createFn          func(context.Context, *models.Notification) error
	listByRecipientFn func(context.Context, uint, int, int) ([]*models.Notification, error)
	markAllReadFn     func(context.Context, uint) error
	unreadCountFn     func(context.Context, uint) (int64, error)
}

func (s *notifRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notifRepoStub) ListByRecipient(ctx context.Context, recipientID uint, page, pageSize int) ([]*models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID, page, pageSize)
}
func (s *notifRepoStub) MarkAllRead(ctx context.Context, recipientID uint) error {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notifRepoStub) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.unreadCountFn(ctx, recipientID)
}

func noopNotifRepo() *notifRepoStub {
	return &notifRepoStub{
		createFn:          func(context.Context, *models.Notification) error { return nil },
		listByRecipientFn: func(context.Context, uint, int, int) ([]*models.Notification, error) { return nil, nil },
		markAllReadFn:     func(context.Context, uint) error { return nil },
		unreadCountFn:     func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type publisherStub struct {
	events []notifications.Event
	users  []uint
}

func (s *publisherStub) PublishUser(ctx context.Context, userID uint, event notifications.Event) error {
	s.users = append(s.users, userID)
	s.events = append(s.events, event)
	return nil
}

func noopNotificationService() *NotificationService {
	return NewNotificationService(noopNotifRepo(), noopUserRepo(), &publisherStub{})
}
