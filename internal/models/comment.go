package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentLength bounds comment and reply content.
const MaxCommentLength = 500

// Placeholder values rendered in place of real content when the underlying
// record is soft-deleted but must remain visible for structural reasons.
const (
	DeletedCommentPlaceholder = "deleted comment"
	DeletedPostPlaceholder    = "deleted post"
)

// Comment represents a top-level comment on a post or a reply to a top-level
// comment. Exactly one of PostID and ParentID is set: top-level comments
// reference their post directly, replies reference their parent comment and
// derive the post through it. Replies cannot themselves have replies.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    Member         `gorm:"foreignKey:AuthorID" json:"author"`
	PostID    *uint          `gorm:"index" json:"post_id,omitempty"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Parent    *Comment       `gorm:"foreignKey:ParentID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReply reports whether the comment is a reply to a top-level comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// Deleted reports whether the comment has been soft-deleted.
func (c *Comment) Deleted() bool {
	return c.DeletedAt.Valid
}

// CommentThread pairs a top-level comment with its full reply list, both
// including soft-deleted rows, ordered oldest-first. It is the raw input the
// visibility resolution works from.
type CommentThread struct {
	Comment *Comment
	Replies []*Comment
}
