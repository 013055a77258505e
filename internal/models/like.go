package models

import "time"

// Like records a member liking a post. One like per member per post.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_member" json:"post_id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:idx_likes_post_member" json:"member_id"`
	CreatedAt time.Time `json:"created_at"`
}
