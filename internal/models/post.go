package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post on a board in the Agora application.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	BoardID  uint   `gorm:"not null;index" json:"board_id"`
	Board    Board  `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   Member `gorm:"foreignKey:AuthorID" json:"author"`
	// CommentsAllowed gates whether new comments and replies may be written
	// against this post. Checked at comment creation time only.
	CommentsAllowed bool `gorm:"not null;default:true" json:"comments_allowed"`
	// LikesCount is not persisted; computed at query time
	LikesCount int            `gorm:"->" json:"likes_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
