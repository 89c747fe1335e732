// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows post listings. Zero values mean "no filter".
type PostFilter struct {
	Search        string
	Tag           string
	AuthorID      uint
	PublishedOnly bool
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	var err error
	if currentUserID == 0 {
		// Anonymous reads share one cached copy; liked is always false for them.
		err = cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.applyPostDetails(r.db.WithContext(ctx), 0).
				Preload("Author").
				First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Author").
			First(&post, id).Error
	}

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	base := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author")
	err := r.applyFilter(base, filter).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).
		Count(&count).Error
	return count, err
}

// applyFilter appends WHERE clauses for the requested filter. LOWER() LIKE is
// used instead of ILIKE so the same query runs on PostgreSQL and SQLite.
func (r *postRepository) applyFilter(db *gorm.DB, filter PostFilter) *gorm.DB {
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		db = db.Where(`tags LIKE ?`, `%"`+filter.Tag+`"%`)
	}
	if filter.AuthorID != 0 {
		db = db.Where("author_id = ?", filter.AuthorID)
	}
	if filter.PublishedOnly {
		db = db.Where("is_published = ?", true)
	}
	return db
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
// Only approved comments count toward comments_count.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.status = 'approved') as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

// Update persists the post's own columns; the preloaded Author association
// must not be written back.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// ON CONFLICT DO NOTHING keeps concurrent double-likes idempotent.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return err
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return err
}
