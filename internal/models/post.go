// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// PostKind distinguishes an original post from the two repost shapes.
// Modeling the kind explicitly removes the invalid state a nullable
// parent plus a boolean flag would allow (retweet with no parent).
type PostKind string

const (
	// PostKindOriginal is a regular post.
	PostKindOriginal PostKind = "original"
	// PostKindRetweet is an empty-content repost of a parent post.
	PostKindRetweet PostKind = "retweet"
	// PostKindQuote is a repost carrying the reposting user's own content.
	PostKindQuote PostKind = "quote"
)

// MaxPostContentLen is the content limit for posts and comments.
const MaxPostContentLen = 280

// Post represents a unit of content: an original post, a retweet or a quote.
type Post struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	Content  string   `gorm:"size:280" json:"content"`
	ImageURL string   `json:"image_url,omitempty"`
	Kind     PostKind `gorm:"type:varchar(10);not null;default:'original';index" json:"kind"`

	// ParentID links a retweet/quote to the post it reposts. Deleting the
	// parent clears the reference instead of cascading, so the child
	// survives.
	ParentID *uint   `gorm:"index" json:"parent_id,omitempty"`
	Parent   *Post   `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"parent,omitempty"`
	Topics   []Topic `gorm:"many2many:post_topics" json:"topics,omitempty"`

	// Computed at query time, never persisted.
	LikesCount    int  `gorm:"->" json:"likes_count"`
	CommentsCount int  `gorm:"->" json:"comments_count"`
	RetweetsCount int  `gorm:"->" json:"retweets_count"`
	TopicsCount   int  `gorm:"->" json:"-"`
	Liked         bool `gorm:"->" json:"liked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like is a user's endorsement of a post. The (user, post) pair is unique;
// the constraint is the final guard behind the application's
// check-then-create toggle.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	Content   string         `gorm:"size:280;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
