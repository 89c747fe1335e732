// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, statuses []models.CommentStatus, limit, offset int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint, statuses []models.CommentStatus) (int64, error)
	ListForModeration(ctx context.Context, statuses []models.CommentStatus, limit, offset int) ([]*models.Comment, error)
	CountForModeration(ctx context.Context, statuses []models.CommentStatus) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Moderator").
		Preload("FlaggedBy").
		First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns top-level comments for a post in the given moderation
// states, newest first. Replies are preloaded with the same status filter in
// chronological order.
func (r *commentRepository) ListByPost(
	ctx context.Context,
	postID uint,
	statuses []models.CommentStatus,
	limit, offset int,
) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("status IN ?", statuses).Order("created_at ASC")
		}).
		Preload("Replies.Author").
		Where("post_id = ? AND parent_id IS NULL AND status IN ?", postID, statuses).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint, statuses []models.CommentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL AND status IN ?", postID, statuses).
		Count(&count).Error
	return count, err
}

// ListForModeration returns comments awaiting review across all posts,
// newest first.
func (r *commentRepository) ListForModeration(
	ctx context.Context,
	statuses []models.CommentStatus,
	limit, offset int,
) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Moderator").
		Preload("FlaggedBy").
		Preload("Post", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "author_id")
		}).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountForModeration(ctx context.Context, statuses []models.CommentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

// Update persists the comment's own columns only. GetByID preloads the
// Moderator and FlaggedBy associations; saving those back would refill the
// audit foreign keys a moderation decision or an edit just cleared.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
