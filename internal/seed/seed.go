// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"chirp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "Chirp-Dem0-Pass!"

var builtInTopics = []string{
	"Technology", "Programming", "Gaming", "Music", "Movies",
	"Sports", "Science", "Travel", "Food", "Art",
	"Books", "Fitness", "Startups", "AI", "Photography",
}

// Topics inserts the built-in topic set. Existing topics are left alone so
// the call is safe to repeat on every boot.
func Topics(db *gorm.DB) error {
	for _, name := range builtInTopics {
		topic := models.Topic{Name: name, Slug: models.Slugify(name)}
		err := db.Where("slug = ?", topic.Slug).FirstOrCreate(&topic).Error
		if err != nil {
			return fmt.Errorf("seed topic %q: %w", name, err)
		}
	}
	return nil
}

// Seeder populates the database with generated users, posts and engagement.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	rng   *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	seed := time.Now().UnixNano()
	return &Seeder{
		db:    db,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// ClearAll removes all seeded data. Deletion order follows the foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"notifications", "likes", "comments", "post_topics",
		"posts", "hashtags", "follows", "profiles", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// SeedUsers creates n accounts with profiles and a follow mesh between them.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, 0, n)
	taken := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		username := strings.ToLower(s.faker.Username())
		for taken[username] || len(username) < 3 {
			username = strings.ToLower(s.faker.Username()) + s.faker.DigitN(2)
		}
		taken[username] = true

		user := models.User{
			Username:  username,
			Email:     username + "@" + s.faker.DomainName(),
			Password:  string(hashed),
			FirstName: s.faker.FirstName(),
			LastName:  s.faker.LastName(),
			IsActive:  true,
			Profile: &models.Profile{
				Bio: s.faker.HackerPhrase(),
			},
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user %q: %w", username, err)
		}
		users = append(users, user)
	}

	// Each user follows roughly a third of the others.
	for i := range users {
		for j := range users {
			if i == j || s.rng.Intn(3) != 0 {
				continue
			}
			follow := models.Follow{FollowerID: users[i].ID, FollowingID: users[j].ID}
			if err := s.db.Create(&follow).Error; err != nil {
				return nil, fmt.Errorf("create follow: %w", err)
			}
		}
	}

	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedPosts creates numPosts posts spread over the given users, with topics,
// hashtags, retweets, quotes, likes, comments and the notifications that
// engagement would have produced.
func (s *Seeder) SeedPosts(users []models.User, numPosts int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to attribute posts to")
	}

	var topics []models.Topic
	if err := s.db.Find(&topics).Error; err != nil {
		return fmt.Errorf("load topics: %w", err)
	}

	posts := make([]models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		content := s.postContent()

		post := models.Post{
			UserID:    author.ID,
			Content:   content,
			Kind:      models.PostKindOriginal,
			CreatedAt: s.pastTime(),
		}
		if len(topics) > 0 && s.rng.Intn(2) == 0 {
			post.Topics = []models.Topic{topics[s.rng.Intn(len(topics))]}
		}
		if err := s.db.Create(&post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		s.recordHashtags(content)
		posts = append(posts, post)
	}

	if err := s.seedEngagement(users, posts); err != nil {
		return err
	}

	log.Printf("Seeded %d posts", len(posts))
	return nil
}

func (s *Seeder) seedEngagement(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID || s.rng.Intn(4) != 0 {
				continue
			}

			like := models.Like{UserID: user.ID, PostID: post.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			s.notify(user.ID, post.UserID, models.VerbLiked, post.ID)

			if s.rng.Intn(3) == 0 {
				comment := models.Comment{
					UserID:  user.ID,
					PostID:  post.ID,
					Content: s.faker.Sentence(s.rng.Intn(8) + 3),
				}
				if err := s.db.Create(&comment).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				s.notify(user.ID, post.UserID, models.VerbCommented, post.ID)
			}

			if s.rng.Intn(6) == 0 {
				kind := models.PostKindRetweet
				content := ""
				if s.rng.Intn(2) == 0 {
					kind = models.PostKindQuote
					content = s.faker.Sentence(s.rng.Intn(6) + 2)
				}
				parentID := post.ID
				share := models.Post{
					UserID:   user.ID,
					Content:  content,
					Kind:     kind,
					ParentID: &parentID,
				}
				if err := s.db.Create(&share).Error; err != nil {
					return fmt.Errorf("create %s: %w", kind, err)
				}
			}
		}
	}
	return nil
}

func (s *Seeder) notify(actorID, recipientID uint, verb string, postID uint) {
	if actorID == recipientID {
		return
	}
	id := postID
	n := models.Notification{
		ActorID:     actorID,
		RecipientID: recipientID,
		Verb:        verb,
		PostID:      &id,
		Read:        s.rng.Intn(2) == 0,
	}
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("seed notification failed: %v", err)
	}
}

func (s *Seeder) postContent() string {
	content := s.faker.Sentence(s.rng.Intn(12) + 4)
	if s.rng.Intn(3) == 0 {
		content += " #" + strings.ToLower(s.faker.HackerNoun())
	}
	return strings.ReplaceAll(content, ".", "") + "."
}

func (s *Seeder) recordHashtags(content string) {
	for _, word := range strings.Fields(content) {
		if !strings.HasPrefix(word, "#") || len(word) < 2 {
			continue
		}
		name := strings.ToLower(strings.Trim(word[1:], ".,!?"))
		if name == "" {
			continue
		}
		tag := models.Hashtag{Name: name}
		if err := s.db.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			log.Printf("seed hashtag %q failed: %v", name, err)
		}
	}
}

func (s *Seeder) pastTime() time.Time {
	return time.Now().Add(-time.Duration(s.rng.Intn(30*24)) * time.Hour)
}
