package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Board{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer wires a Server against sqlite without Redis or metrics.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db := setupHandlerTestDB(t)
	s := &Server{
		db:          db,
		memberRepo:  repository.NewMemberRepository(db),
		boardRepo:   repository.NewBoardRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
	}
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.isAdminByMemberID)
	s.postService = service.NewPostService(s.postRepo, s.boardRepo, s.likeRepo, s.isAdminByMemberID)
	return s, db
}

// asMember injects the acting identity the way AuthRequired would.
func asMember(member *models.Member) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", member.ID)
		c.Locals("username", member.Username)
		return c.Next()
	}
}

func createTestMember(t *testing.T, db *gorm.DB, username string) *models.Member {
	t.Helper()
	m := &models.Member{Username: username, Email: username + "@example.com", Password: "pw"}
	require.NoError(t, db.Create(m).Error)
	return m
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.Member, commentsAllowed bool) *models.Post {
	t.Helper()
	board := &models.Board{Name: "general-" + author.Username}
	require.NoError(t, db.Create(board).Error)
	post := &models.Post{
		Title:           "a post",
		Content:         "post body",
		BoardID:         board.ID,
		AuthorID:        author.ID,
		CommentsAllowed: commentsAllowed,
	}
	require.NoError(t, db.Create(post).Error)
	// The model tags CommentsAllowed with default:true, so GORM omits the
	// field on insert when it is false; force-write the intended value.
	require.NoError(t, db.Model(post).Update("comments_allowed", commentsAllowed).Error)
	return post
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, dest))
}

func TestCommentHandlers_WriteAndReadBack(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")
	post := createTestPost(t, db, alice, true)

	app := fiber.New()
	app.Use(asMember(alice))
	app.Post("/posts/:id/comments", s.CreateComment)
	app.Get("/comments/:commentId", s.GetComment)

	resp := postJSON(t, app, fmt.Sprintf("/posts/%d/comments", post.ID), fiber.Map{"content": "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Comment
	decodeBody(t, resp, &created)
	assert.Equal(t, "hello", created.Content)
	assert.Equal(t, "alice", created.Author.Username)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/comments/%d", created.ID), nil)
	getResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var fetched models.Comment
	decodeBody(t, getResp, &fetched)
	assert.Equal(t, "hello", fetched.Content)
}

func TestCommentHandlers_DeletedParentRendersPlaceholder(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")
	bob := createTestMember(t, db, "bob")
	post := createTestPost(t, db, alice, true)

	aliceApp := fiber.New()
	aliceApp.Use(asMember(alice))
	aliceApp.Post("/posts/:id/comments", s.CreateComment)
	aliceApp.Delete("/comments/:commentId", s.DeleteComment)
	aliceApp.Get("/posts/:id/comments", s.GetComments)

	bobApp := fiber.New()
	bobApp.Use(asMember(bob))
	bobApp.Post("/comments/:commentId/replies", s.CreateReply)
	bobApp.Delete("/comments/:commentId", s.DeleteComment)

	// alice comments, bob replies
	resp := postJSON(t, aliceApp, fmt.Sprintf("/posts/%d/comments", post.ID), fiber.Map{"content": "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeBody(t, resp, &comment)

	resp = postJSON(t, bobApp, fmt.Sprintf("/comments/%d/replies", comment.ID), fiber.Map{"content": "hi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reply models.Comment
	decodeBody(t, resp, &reply)

	// alice deletes her comment; the thread must render as a placeholder
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/comments/%d", comment.ID), nil)
	delResp, err := aliceApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, delResp.StatusCode)
	_ = delResp.Body.Close()

	listResp, err := aliceApp.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/posts/%d/comments", post.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var nodes []models.CommentNode
	decodeBody(t, listResp, &nodes)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Deleted)
	assert.Equal(t, models.DeletedCommentPlaceholder, nodes[0].Content)
	assert.Empty(t, nodes[0].Author)
	require.Len(t, nodes[0].Replies, 1)
	assert.Equal(t, "hi", nodes[0].Replies[0].Content)
	assert.Equal(t, "bob", nodes[0].Replies[0].Author)

	// bob deletes his reply; the whole node disappears
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/comments/%d", reply.ID), nil)
	delResp, err = bobApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, delResp.StatusCode)
	_ = delResp.Body.Close()

	listResp, err = aliceApp.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/posts/%d/comments", post.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	decodeBody(t, listResp, &nodes)
	assert.Empty(t, nodes)
}

func TestCommentHandlers_CommentsDisabledIsForbidden(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")
	post := createTestPost(t, db, alice, false)

	app := fiber.New()
	app.Use(asMember(alice))
	app.Post("/posts/:id/comments", s.CreateComment)

	resp := postJSON(t, app, fmt.Sprintf("/posts/%d/comments", post.ID), fiber.Map{"content": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCommentHandlers_ReplyToMissingCommentIsNotFound(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")

	app := fiber.New()
	app.Use(asMember(alice))
	app.Post("/comments/:commentId/replies", s.CreateReply)

	resp := postJSON(t, app, "/comments/999/replies", fiber.Map{"content": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCommentHandlers_EditByNonOwnerIsForbidden(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")
	mallory := createTestMember(t, db, "mallory")
	post := createTestPost(t, db, alice, true)

	aliceApp := fiber.New()
	aliceApp.Use(asMember(alice))
	aliceApp.Post("/posts/:id/comments", s.CreateComment)

	resp := postJSON(t, aliceApp, fmt.Sprintf("/posts/%d/comments", post.ID), fiber.Map{"content": "mine"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeBody(t, resp, &comment)

	malloryApp := fiber.New()
	malloryApp.Use(asMember(mallory))
	malloryApp.Put("/comments/:commentId", s.UpdateComment)
	malloryApp.Delete("/comments/:commentId", s.DeleteComment)

	body, _ := json.Marshal(fiber.Map{"content": "hijacked"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/comments/%d", comment.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	editResp, err := malloryApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, editResp.StatusCode)
	_ = editResp.Body.Close()

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/comments/%d", comment.ID), nil)
	delResp, err := malloryApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, delResp.StatusCode)
	_ = delResp.Body.Close()

	// the comment is untouched
	var stored models.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.Equal(t, "mine", stored.Content)
}

func TestCommentHandlers_SecondDeleteIsNotFound(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")
	post := createTestPost(t, db, alice, true)

	app := fiber.New()
	app.Use(asMember(alice))
	app.Post("/posts/:id/comments", s.CreateComment)
	app.Delete("/comments/:commentId", s.DeleteComment)

	resp := postJSON(t, app, fmt.Sprintf("/posts/%d/comments", post.ID), fiber.Map{"content": "once"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeBody(t, resp, &comment)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/comments/%d", comment.ID), nil)
	delResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
	_ = delResp.Body.Close()

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/comments/%d", comment.ID), nil)
	delResp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, delResp.StatusCode)
	_ = delResp.Body.Close()
}

func TestCommentHandlers_AdminCanDeleteOthersComment(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")
	admin := &models.Member{Username: "root", Email: "root@example.com", Password: "pw", IsAdmin: true}
	require.NoError(t, db.Create(admin).Error)
	post := createTestPost(t, db, alice, true)

	aliceApp := fiber.New()
	aliceApp.Use(asMember(alice))
	aliceApp.Post("/posts/:id/comments", s.CreateComment)

	resp := postJSON(t, aliceApp, fmt.Sprintf("/posts/%d/comments", post.ID), fiber.Map{"content": "to be moderated"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeBody(t, resp, &comment)

	adminApp := fiber.New()
	adminApp.Use(asMember(admin))
	adminApp.Delete("/comments/:commentId", s.DeleteComment)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/comments/%d", comment.ID), nil)
	delResp, err := adminApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
	_ = delResp.Body.Close()
}

func TestMemberHandlers_MyCommentsHidePostTitleWhenPostDeleted(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	alice := createTestMember(t, db, "alice")
	bob := createTestMember(t, db, "bob")
	post := createTestPost(t, db, alice, true)

	bobApp := fiber.New()
	bobApp.Use(asMember(bob))
	bobApp.Post("/posts/:id/comments", s.CreateComment)
	bobApp.Get("/members/me/comments", s.GetMyComments)

	resp := postJSON(t, bobApp, fmt.Sprintf("/posts/%d/comments", post.ID), fiber.Map{"content": "nice post"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// soft-delete the post
	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)

	listResp, err := bobApp.Test(httptest.NewRequest(http.MethodGet, "/members/me/comments", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var views []models.MemberCommentView
	decodeBody(t, listResp, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "nice post", views[0].Content)
	assert.True(t, views[0].PostDeleted)
	assert.Equal(t, models.DeletedPostPlaceholder, views[0].PostTitle)
}
