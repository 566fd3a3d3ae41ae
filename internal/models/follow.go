// Package models contains data structures for the application's domain models.
package models

import "time"

// Follow is a directed follow edge between two users.
// The (follower, following) pair is unique; self-follows are rejected at
// the service layer rather than by a database constraint.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_edge" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_edge;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
