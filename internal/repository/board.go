package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// BoardRepository defines interface for board operations
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	GetByID(ctx context.Context, id uint) (*models.Board, error)
	GetByName(ctx context.Context, name string) (*models.Board, error)
	List(ctx context.Context) ([]*models.Board, error)
	Update(ctx context.Context, board *models.Board) error
	Delete(ctx context.Context, id uint) error
}

type boardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *boardRepository) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) GetByName(ctx context.Context, name string) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) List(ctx context.Context) ([]*models.Board, error) {
	var boards []*models.Board
	err := r.db.WithContext(ctx).Order("name asc").Find(&boards).Error
	return boards, err
}

func (r *boardRepository) Update(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

func (r *boardRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Board{}, id).Error
}
