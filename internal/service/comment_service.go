package service

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"gorm.io/gorm"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	canModerate func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

type ListCommentsInput struct {
	PostID   uint
	UserID   uint // 0 for anonymous
	Statuses []string
	Page     int
	Limit    int
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	canModerate func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		canModerate: canModerate,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Comment", *in.ParentID)
			}
			return nil, models.NewInternalError(err)
		}
		if parent.PostID != in.PostID {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.UserID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
		Status:   models.CommentStatusPending,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns one page of top-level comments for a post with replies
// attached. Non-moderators may only see approved comments.
func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) ([]*models.Comment, Pagination, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Pagination{}, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, Pagination{}, models.NewInternalError(err)
	}

	moderator := false
	if in.UserID != 0 && s.canModerate != nil {
		var err error
		moderator, err = s.canModerate(ctx, in.UserID)
		if err != nil {
			return nil, Pagination{}, err
		}
	}

	statuses, err := resolveStatuses(in.Statuses, moderator, []models.CommentStatus{
		models.CommentStatusApproved,
		models.CommentStatusPending,
		models.CommentStatusFlagged,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	page, limit := clampPageLimit(in.Page, in.Limit)
	offset := (page - 1) * limit

	total, err := s.commentRepo.CountByPost(ctx, in.PostID, statuses)
	if err != nil {
		return nil, Pagination{}, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, in.PostID, statuses, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	return comments, newPagination(page, limit, total), nil
}

// resolveStatuses validates requested status tokens and applies role defaults.
// Non-moderators may only ever request approved comments.
func resolveStatuses(requested []string, moderator bool, moderatorDefault []models.CommentStatus) ([]models.CommentStatus, error) {
	if len(requested) == 0 {
		if moderator {
			return moderatorDefault, nil
		}
		return []models.CommentStatus{models.CommentStatusApproved}, nil
	}

	statuses := make([]models.CommentStatus, 0, len(requested))
	for _, raw := range requested {
		status := models.CommentStatus(raw)
		if !models.ValidCommentStatus(status) {
			return nil, models.NewValidationError("Invalid comment status: " + raw)
		}
		if !moderator && status != models.CommentStatusApproved {
			return nil, models.NewForbiddenError("Only moderators can view unapproved comments")
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// UpdateComment lets the author edit their comment. Any edit resets the
// comment to pending and wipes its moderation history.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, models.NewInternalError(err)
	}

	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Content = in.Content
	comment.ClearModeration()
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, models.NewInternalError(err)
	}

	if comment.AuthorID != in.UserID {
		allowed := false
		if s.canModerate != nil {
			allowed, err = s.canModerate(ctx, in.UserID)
			if err != nil {
				return nil, err
			}
		}
		if !allowed {
			return nil, models.NewForbiddenError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}

	return comment, nil
}
