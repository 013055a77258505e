package models

import "time"

// ReplyView is the rendered form of a visible (non-deleted) reply.
type ReplyView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentNode is a rendered top-level comment with its visible replies, as
// returned by the post-thread listing. A deleted comment that still has
// visible replies is rendered with placeholder content and no author.
type CommentNode struct {
	ID        uint        `json:"id"`
	Content   string      `json:"content"`
	Author    string      `json:"author,omitempty"`
	Deleted   bool        `json:"deleted"`
	CreatedAt time.Time   `json:"created_at"`
	Replies   []ReplyView `json:"replies"`
}

// MemberCommentView is a single entry in a member's own comment listing,
// annotated with the owning post's title. When the post has been soft-deleted
// the title is replaced with a placeholder rather than omitting the comment.
type MemberCommentView struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	Reply       bool      `json:"reply"`
	PostID      uint      `json:"post_id"`
	PostTitle   string    `json:"post_title"`
	PostDeleted bool      `json:"post_deleted"`
	CreatedAt   time.Time `json:"created_at"`
}
