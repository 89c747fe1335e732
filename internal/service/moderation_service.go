package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"gorm.io/gorm"
)

// ModerationService owns the comment moderation state machine: approve,
// reject, flag, and the review queue.
type ModerationService struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

type ModerateCommentInput struct {
	ActorID   uint
	CommentID uint
	Reason    string
}

type ModerationQueueInput struct {
	ActorID  uint
	Statuses []string
	Page     int
	Limit    int
}

// NewModerationService returns a new ModerationService.
func NewModerationService(commentRepo repository.CommentRepository, userRepo repository.UserRepository) *ModerationService {
	return &ModerationService{commentRepo: commentRepo, userRepo: userRepo}
}

func (s *ModerationService) loadComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *ModerationService) requireModerator(ctx context.Context, actorID uint) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModerate() {
		return nil, models.NewForbiddenError("Moderator role required")
	}
	return actor, nil
}

// ApproveComment transitions a comment to approved. Approving also clears any
// outstanding flag so the comment leaves the review queue.
func (s *ModerationService) ApproveComment(ctx context.Context, in ModerateCommentInput) (*models.Comment, error) {
	return s.decide(ctx, in, models.CommentStatusApproved, "approve")
}

// RejectComment transitions a comment to rejected.
func (s *ModerationService) RejectComment(ctx context.Context, in ModerateCommentInput) (*models.Comment, error) {
	return s.decide(ctx, in, models.CommentStatusRejected, "reject")
}

func (s *ModerationService) decide(ctx context.Context, in ModerateCommentInput, status models.CommentStatus, action string) (*models.Comment, error) {
	if err := validation.ValidateModerationReason(in.Reason); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.requireModerator(ctx, in.ActorID); err != nil {
		return nil, err
	}

	comment, err := s.loadComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment.Status = status
	comment.ModeratedByID = &in.ActorID
	comment.ModeratedAt = &now
	if reason := strings.TrimSpace(in.Reason); reason != "" {
		comment.ModerationNotes = &reason
	}
	// A decision resolves any outstanding flag either way.
	comment.FlaggedByID = nil
	comment.FlaggedAt = nil

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	observability.CommentModerationActions.WithLabelValues(action).Inc()
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// FlagComment marks a comment for moderator review. Any authenticated user
// except the comment's author may flag. Flagging a rejected comment records
// the flag but leaves the status rejected.
func (s *ModerationService) FlagComment(ctx context.Context, in ModerateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateModerationReason(in.Reason); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment, err := s.loadComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID == in.ActorID {
		return nil, models.NewValidationError("You cannot flag your own comment")
	}
	if comment.Status == models.CommentStatusFlagged &&
		comment.FlaggedByID != nil && *comment.FlaggedByID == in.ActorID {
		return nil, models.NewConflictError("You have already flagged this comment")
	}

	now := time.Now()
	if comment.Status != models.CommentStatusRejected {
		comment.Status = models.CommentStatusFlagged
	}
	if reason := strings.TrimSpace(in.Reason); reason != "" {
		comment.ModerationNotes = appendNote(comment.ModerationNotes, "Flag reason: "+reason)
	}
	comment.FlaggedByID = &in.ActorID
	comment.FlaggedAt = &now

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	observability.CommentModerationActions.WithLabelValues("flag").Inc()
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// appendNote joins the existing notes and the new line, dropping empties.
func appendNote(existing *string, line string) *string {
	parts := make([]string, 0, 2)
	if existing != nil && strings.TrimSpace(*existing) != "" {
		parts = append(parts, *existing)
	}
	parts = append(parts, line)
	joined := strings.Join(parts, "\n")
	return &joined
}

// Queue returns one page of comments awaiting review, defaulting to pending
// and flagged comments.
func (s *ModerationService) Queue(ctx context.Context, in ModerationQueueInput) ([]*models.Comment, Pagination, error) {
	if _, err := s.requireModerator(ctx, in.ActorID); err != nil {
		return nil, Pagination{}, err
	}

	statuses, err := resolveStatuses(in.Statuses, true, []models.CommentStatus{
		models.CommentStatusPending,
		models.CommentStatusFlagged,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	page, limit := clampPageLimit(in.Page, in.Limit)
	offset := (page - 1) * limit

	total, err := s.commentRepo.CountForModeration(ctx, statuses)
	if err != nil {
		return nil, Pagination{}, err
	}

	comments, err := s.commentRepo.ListForModeration(ctx, statuses, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	return comments, newPagination(page, limit, total), nil
}
