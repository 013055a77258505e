// Package service contains the business rules layered over the repositories.
package service

import "agora/internal/models"

// resolveThread turns a raw thread (top-level comment plus all replies,
// soft-deleted rows included) into its rendered form.
//
// A non-deleted comment renders with its real content and its non-deleted
// replies. A deleted comment that still has at least one non-deleted reply
// renders as a placeholder with no author, keeping the surviving replies
// anchored. A deleted comment with no visible replies is omitted entirely,
// in which case resolveThread returns (nil, false).
//
// Deleted replies never render in any case.
func resolveThread(t *models.CommentThread) (*models.CommentNode, bool) {
	visible := make([]models.ReplyView, 0, len(t.Replies))
	for _, reply := range t.Replies {
		if reply.Deleted() {
			continue
		}
		visible = append(visible, models.ReplyView{
			ID:        reply.ID,
			Content:   reply.Content,
			Author:    reply.Author.Username,
			CreatedAt: reply.CreatedAt,
		})
	}

	c := t.Comment
	if !c.Deleted() {
		return &models.CommentNode{
			ID:        c.ID,
			Content:   c.Content,
			Author:    c.Author.Username,
			Deleted:   false,
			CreatedAt: c.CreatedAt,
			Replies:   visible,
		}, true
	}

	if len(visible) == 0 {
		return nil, false
	}

	return &models.CommentNode{
		ID:        c.ID,
		Content:   models.DeletedCommentPlaceholder,
		Deleted:   true,
		CreatedAt: c.CreatedAt,
		Replies:   visible,
	}, true
}
