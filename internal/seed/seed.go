package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with a realistic discussion-board dataset:
// boards, members, posts, comment threads, and a sprinkling of soft-deleted
// comments so placeholder rendering shows up in seeded data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	r       *rand.Rand
}

// NewSeeder creates a Seeder bound to the given DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		r:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Hard-deletes, including soft-deleted rows.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{
		&models.Like{},
		&models.Comment{},
		&models.Post{},
		&models.Board{},
		&models.Member{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}
	return nil
}

// SeedForum creates numMembers members and numPosts posts spread over a few
// boards, each post with comment threads. Roughly one in ten comments gets
// soft-deleted afterwards so thread rendering has placeholders to resolve.
func (s *Seeder) SeedForum(numMembers, numPosts int) error {
	boardNames := []string{"general", "help", "showcase", "off-topic"}
	boards := make([]*models.Board, 0, len(boardNames))
	for _, name := range boardNames {
		board, err := s.factory.CreateBoard(func(b *models.Board) {
			b.Name = name
		})
		if err != nil {
			return fmt.Errorf("failed to seed board %q: %w", name, err)
		}
		boards = append(boards, board)
	}

	members := make([]*models.Member, 0, numMembers)
	for i := 0; i < numMembers; i++ {
		overrides := []func(*models.Member){}
		if i == 0 {
			overrides = append(overrides, func(m *models.Member) {
				m.Username = "admin"
				m.Email = "admin@agora.local"
				m.IsAdmin = true
			})
		}
		member, err := s.factory.CreateMember(overrides...)
		if err != nil {
			return fmt.Errorf("failed to seed member: %w", err)
		}
		members = append(members, member)
	}
	log.Printf("Seeded %d members", len(members))

	var deletable []uint
	for i := 0; i < numPosts; i++ {
		board := boards[s.r.Intn(len(boards))]
		author := members[s.r.Intn(len(members))]
		post, err := s.factory.CreatePost(board, author)
		if err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}

		for j := 0; j < s.r.Intn(6); j++ {
			commenter := members[s.r.Intn(len(members))]
			comment, err := s.factory.CreateComment(post, commenter)
			if err != nil {
				return fmt.Errorf("failed to seed comment: %w", err)
			}
			deletable = append(deletable, comment.ID)

			for k := 0; k < s.r.Intn(4); k++ {
				replier := members[s.r.Intn(len(members))]
				reply, err := s.factory.CreateReply(comment, replier)
				if err != nil {
					return fmt.Errorf("failed to seed reply: %w", err)
				}
				deletable = append(deletable, reply.ID)
			}
		}

		for _, member := range members {
			if s.r.Intn(5) == 0 {
				if err := s.factory.CreateLike(post, member); err != nil {
					return fmt.Errorf("failed to seed like: %w", err)
				}
			}
		}
	}
	log.Printf("Seeded %d posts", numPosts)

	deleted := 0
	for _, id := range deletable {
		if s.r.Intn(10) == 0 {
			if err := s.db.Delete(&models.Comment{}, id).Error; err != nil {
				return fmt.Errorf("failed to soft-delete comment %d: %w", id, err)
			}
			deleted++
		}
	}
	log.Printf("Soft-deleted %d of %d comments", deleted, len(deletable))

	return nil
}
