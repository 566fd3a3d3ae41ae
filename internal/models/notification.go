// Package models contains data structures for the application's domain models.
package models

import "time"

// Notification verbs. Kept as strings rather than an enum so the inbox
// can render them directly.
const (
	VerbLiked     = "liked your post"
	VerbRetweeted = "retweeted your post"
	VerbQuoted    = "quoted your post"
	VerbCommented = "commented on your post"
	VerbFollowed  = "started following you"
)

// Notification is an event record delivered to a user's inbox.
type Notification struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ActorID     uint   `gorm:"not null" json:"actor_id"`
	Actor       User   `gorm:"foreignKey:ActorID" json:"actor"`
	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	Verb        string `gorm:"size:80;not null" json:"verb"`
	PostID      *uint  `json:"post_id,omitempty"`
	Post        *Post  `gorm:"foreignKey:PostID;constraint:OnDelete:SET NULL" json:"post,omitempty"`
	Read        bool   `gorm:"default:false;index" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
