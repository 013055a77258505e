// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateMember constructs and persists a sample member. All seeded members
// share the password "password123". Optional override functions may modify
// the generated member before saving.
func (f *Factory) CreateMember(overrides ...func(*models.Member)) (*models.Member, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	member := &models.Member{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashedPassword),
	}

	for _, override := range overrides {
		override(member)
	}

	if err := f.db.Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// CreateBoard constructs and persists a board.
func (f *Factory) CreateBoard(overrides ...func(*models.Board)) (*models.Board, error) {
	board := &models.Board{
		Name:        gofakeit.BuzzWord() + fmt.Sprintf("-%d", gofakeit.Number(100, 999)),
		Description: gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(board)
	}

	if err := f.db.Create(board).Error; err != nil {
		return nil, err
	}
	return board, nil
}

// CreatePost constructs and persists a post with a realistic created_at spread
// over the last 90 days.
func (f *Factory) CreatePost(board *models.Board, author *models.Member, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:           gofakeit.Sentence(5),
		Content:         gofakeit.Paragraph(1, 3, 5, "\n"),
		BoardID:         board.ID,
		AuthorID:        author.ID,
		CommentsAllowed: true,
		CreatedAt:       f.pastTimestamp(90),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a top-level comment on the given post.
func (f *Factory) CreateComment(post *models.Post, author *models.Member, overrides ...func(*models.Comment)) (*models.Comment, error) {
	postID := post.ID
	comment := &models.Comment{
		Content:   gofakeit.Sentence(gofakeit.Number(4, 20)),
		AuthorID:  author.ID,
		PostID:    &postID,
		CreatedAt: f.pastTimestamp(30),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply persists a reply to the given top-level comment.
func (f *Factory) CreateReply(parent *models.Comment, author *models.Member, overrides ...func(*models.Comment)) (*models.Comment, error) {
	parentID := parent.ID
	reply := &models.Comment{
		Content:   gofakeit.Sentence(gofakeit.Number(3, 15)),
		AuthorID:  author.ID,
		ParentID:  &parentID,
		CreatedAt: f.pastTimestamp(14),
	}

	for _, override := range overrides {
		override(reply)
	}

	if err := f.db.Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

// CreateLike records a like for the post by the member, ignoring duplicates.
func (f *Factory) CreateLike(post *models.Post, member *models.Member) error {
	like := &models.Like{PostID: post.ID, MemberID: member.ID}
	err := f.db.Create(like).Error
	if err != nil && isDuplicateError(err) {
		return nil
	}
	return err
}

func (f *Factory) pastTimestamp(maxDays int) time.Time {
	daysBack := f.r.Intn(maxDays)
	hoursBack := f.r.Intn(24)
	minsBack := f.r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
