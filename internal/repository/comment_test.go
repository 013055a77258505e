package repository

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCommentDB opens an in-memory sqlite database with the comment schema.
// The soft-delete scoping behavior under test is driver-independent.
func setupCommentDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Member{}, &models.Board{}, &models.Post{}, &models.Comment{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func seedThread(t *testing.T, db *gorm.DB) (postID uint, members map[string]*models.Member) {
	t.Helper()
	members = map[string]*models.Member{}
	for _, name := range []string{"alice", "bob", "carol"} {
		m := &models.Member{Username: name, Email: name + "@example.com", Password: "x"}
		require.NoError(t, db.Create(m).Error)
		members[name] = m
	}

	board := &models.Board{Name: "general"}
	require.NoError(t, db.Create(board).Error)

	post := &models.Post{
		Title:           "hello",
		Content:         "world",
		BoardID:         board.ID,
		AuthorID:        members["alice"].ID,
		CommentsAllowed: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post.ID, members
}

func createComment(t *testing.T, db *gorm.DB, authorID uint, postID, parentID *uint, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{Content: content, AuthorID: authorID, PostID: postID, ParentID: parentID}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestCommentRepository_GetByID_ExcludesDeleted(t *testing.T) {
	db := setupCommentDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	postID, members := seedThread(t, db)

	c := createComment(t, db, members["bob"].ID, &postID, nil, "visible")

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "visible", got.Content)
	assert.Equal(t, "bob", got.Author.Username, "author must be preloaded")

	require.NoError(t, repo.MarkDeleted(ctx, c.ID))

	_, err = repo.GetByID(ctx, c.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound),
		"a soft-deleted comment must look absent to the default lookup")

	// The unscoped lookup still sees it.
	deleted, err := repo.GetByIDIncludingDeleted(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())
}

func TestCommentRepository_MarkDeleted_Idempotent(t *testing.T) {
	db := setupCommentDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	postID, members := seedThread(t, db)

	c := createComment(t, db, members["bob"].ID, &postID, nil, "bye")

	require.NoError(t, repo.MarkDeleted(ctx, c.ID))
	first, err := repo.GetByIDIncludingDeleted(ctx, c.ID)
	require.NoError(t, err)
	firstDeletedAt := first.DeletedAt.Time

	// Second delete is a no-op: the timestamp does not move.
	require.NoError(t, repo.MarkDeleted(ctx, c.ID))
	second, err := repo.GetByIDIncludingDeleted(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, firstDeletedAt, second.DeletedAt.Time)
}

func TestCommentRepository_ListThreadsByPost(t *testing.T) {
	db := setupCommentDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	postID, members := seedThread(t, db)

	first := createComment(t, db, members["alice"].ID, &postID, nil, "first")
	second := createComment(t, db, members["bob"].ID, &postID, nil, "second")

	r1 := createComment(t, db, members["bob"].ID, nil, &first.ID, "older reply")
	r2 := createComment(t, db, members["carol"].ID, nil, &first.ID, "newer reply")

	// Soft-delete one top-level comment and one reply; both must still be
	// returned so the caller can resolve visibility.
	require.NoError(t, repo.MarkDeleted(ctx, second.ID))
	require.NoError(t, repo.MarkDeleted(ctx, r1.ID))

	threads, err := repo.ListThreadsByPost(ctx, postID, 20, 0)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	// Newest top-level first.
	assert.Equal(t, second.ID, threads[0].Comment.ID)
	assert.True(t, threads[0].Comment.Deleted())
	assert.Equal(t, first.ID, threads[1].Comment.ID)

	// Replies oldest-first, deleted included.
	require.Len(t, threads[1].Replies, 2)
	assert.Equal(t, r1.ID, threads[1].Replies[0].ID)
	assert.True(t, threads[1].Replies[0].Deleted())
	assert.Equal(t, r2.ID, threads[1].Replies[1].ID)
	assert.Equal(t, "carol", threads[1].Replies[1].Author.Username)
}

func TestCommentRepository_ListThreadsByPost_Pagination(t *testing.T) {
	db := setupCommentDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	postID, members := seedThread(t, db)

	var ids []uint
	for i := 0; i < 25; i++ {
		c := createComment(t, db, members["alice"].ID, &postID, nil, "c")
		ids = append(ids, c.ID)
	}

	page1, err := repo.ListThreadsByPost(ctx, postID, 20, 0)
	require.NoError(t, err)
	require.Len(t, page1, 20)
	assert.Equal(t, ids[24], page1[0].Comment.ID, "newest first")

	page2, err := repo.ListThreadsByPost(ctx, postID, 20, 20)
	require.NoError(t, err)
	require.Len(t, page2, 5)
	assert.Equal(t, ids[4], page2[0].Comment.ID)

	empty, err := repo.ListThreadsByPost(ctx, postID, 20, 40)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCommentRepository_ListByAuthor(t *testing.T) {
	db := setupCommentDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	postID, members := seedThread(t, db)

	bob := members["bob"].ID
	kept := createComment(t, db, bob, &postID, nil, "kept")
	removed := createComment(t, db, bob, &postID, nil, "removed")
	parent := createComment(t, db, members["alice"].ID, &postID, nil, "parent")
	replyRow := createComment(t, db, bob, nil, &parent.ID, "my reply")

	require.NoError(t, repo.MarkDeleted(ctx, removed.ID))
	// The parent being deleted must not hide bob's reply from his own listing.
	require.NoError(t, repo.MarkDeleted(ctx, parent.ID))

	comments, err := repo.ListByAuthor(ctx, bob, 20, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// Newest first: the reply, then the kept comment.
	assert.Equal(t, replyRow.ID, comments[0].ID)
	require.NotNil(t, comments[0].Parent, "deleted parent must still be preloaded")
	assert.Equal(t, postID, *comments[0].Parent.PostID)
	assert.Equal(t, kept.ID, comments[1].ID)
}
