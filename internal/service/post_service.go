package service

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"gorm.io/gorm"
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	Excerpt  string
	ImageURL string
	Tags     []string
}

type ListPostsInput struct {
	Search        string
	Tag           string
	AuthorID      uint
	Page          int
	Limit         int
	CurrentUserID uint
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Title    string
	Content  string
	Excerpt  string
	ImageURL string
	Tags     []string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	now := time.Now()
	post := &models.Post{
		Title:       in.Title,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		ImageURL:    in.ImageURL,
		Tags:        in.Tags,
		AuthorID:    in.UserID,
		IsPublished: true,
		PublishedAt: &now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ListPosts returns one page of published posts.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, Pagination, error) {
	filter := repository.PostFilter{
		Search:        in.Search,
		Tag:           in.Tag,
		AuthorID:      in.AuthorID,
		PublishedOnly: true,
	}

	page, limit := clampPageLimit(in.Page, in.Limit)
	offset := (page - 1) * limit

	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	posts, err := s.postRepo.List(ctx, filter, limit, offset, in.CurrentUserID)
	if err != nil {
		return nil, Pagination{}, err
	}

	return posts, newPagination(page, limit, total), nil
}

// GetPost returns a single post and bumps its view counter. Unpublished posts
// are visible only to their author.
func (s *PostService) GetPost(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	if !post.IsPublished && post.AuthorID != currentUserID {
		return nil, models.NewNotFoundError("Post", id)
	}

	// View count is best-effort; a miss never fails the read.
	if err := s.postRepo.IncrementViewCount(ctx, id); err == nil {
		post.ViewCount++
	}

	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title != "" {
		if err := validation.ValidatePostTitle(in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = in.Title
	}
	if in.Content != "" {
		if err := validation.ValidatePostContent(in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Content = in.Content
	}
	if in.Excerpt != "" {
		post.Excerpt = in.Excerpt
	}
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}
	if in.Tags != nil {
		post.Tags = in.Tags
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return nil, err
	}

	return post, nil
}

// ToggleLike likes the post if the user has not liked it yet, otherwise
// removes the like. Returns the resulting liked state.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.NewNotFoundError("Post", postID)
		}
		return false, models.NewInternalError(err)
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return false, err
	}
	return true, nil
}
