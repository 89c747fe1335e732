package service

import (
	"context"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn             func(context.Context, *models.Comment) error
	getByIDFn            func(context.Context, uint) (*models.Comment, error)
	listByPostFn         func(context.Context, uint, []models.CommentStatus, int, int) ([]*models.Comment, error)
	countByPostFn        func(context.Context, uint, []models.CommentStatus) (int64, error)
	listForModerationFn  func(context.Context, []models.CommentStatus, int, int) ([]*models.Comment, error)
	countForModerationFn func(context.Context, []models.CommentStatus) (int64, error)
	updateFn             func(context.Context, *models.Comment) error
	deleteFn             func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, statuses []models.CommentStatus, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, statuses, limit, offset)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint, statuses []models.CommentStatus) (int64, error) {
	return s.countByPostFn(ctx, postID, statuses)
}
func (s *commentRepoStub) ListForModeration(ctx context.Context, statuses []models.CommentStatus, limit, offset int) ([]*models.Comment, error) {
	return s.listForModerationFn(ctx, statuses, limit, offset)
}
func (s *commentRepoStub) CountForModeration(ctx context.Context, statuses []models.CommentStatus) (int64, error) {
	return s.countForModerationFn(ctx, statuses)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn: func(_ context.Context, _ uint, _ []models.CommentStatus, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countByPostFn: func(_ context.Context, _ uint, _ []models.CommentStatus) (int64, error) { return 0, nil },
		listForModerationFn: func(_ context.Context, _ []models.CommentStatus, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countForModerationFn: func(_ context.Context, _ []models.CommentStatus) (int64, error) { return 0, nil },
		updateFn:             func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:             func(_ context.Context, _ uint) error { return nil },
	}
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopPostRepo(), nil)
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID:  1,
			PostID:  1,
			Content: strings.Repeat("x", 5001),
		})
		assertValidationError(t, err)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc2 := NewCommentService(noopCommentRepo(), postRepo, nil)
		_, err := svc2.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 99, Content: "hi"})
		assertNotFoundError(t, err)
	})
}

func TestCommentService_CreateComment_ParentChecks(t *testing.T) {
	t.Parallel()

	parentID := uint(3)

	t.Run("parent on a different post", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 2}, nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil)
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			UserID: 1, PostID: 1, ParentID: &parentID, Content: "hi",
		})
		assertNotFoundError(t, err)
	})

	t.Run("replying to a reply is allowed", func(t *testing.T) {
		t.Parallel()
		grandparent := uint(1)
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1, ParentID: &grandparent}, nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil)
		comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
			UserID: 1, PostID: 1, ParentID: &parentID, Content: "hi",
		})
		require.NoError(t, err)
		assert.NotNil(t, comment)
	})
}

func TestCommentService_CreateComment_StartsPending(t *testing.T) {
	t.Parallel()

	var created *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		created = c
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return created, nil
	}

	svc := NewCommentService(commentRepo, noopPostRepo(), nil)
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:  1,
		PostID:  1,
		Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), comment.ID)
	assert.Equal(t, models.CommentStatusPending, comment.Status)
}

func TestCommentService_UpdateComment_ResetsModeration(t *testing.T) {
	t.Parallel()

	t.Run("non-author cannot edit", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, AuthorID: 10}, nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil)
		_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{UserID: 1, CommentID: 1, Content: "new"})
		assertForbiddenError(t, err)
	})

	t.Run("edit clears audit fields and returns to pending", func(t *testing.T) {
		t.Parallel()
		modID := uint(9)
		stored := &models.Comment{
			ID:            1,
			AuthorID:      1,
			Content:       "old",
			Status:        models.CommentStatusApproved,
			ModeratedByID: &modID,
		}
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			cp := *stored
			return &cp, nil
		}
		commentRepo.updateFn = func(_ context.Context, c *models.Comment) error {
			stored = c
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil)
		comment, err := svc.UpdateComment(context.Background(), UpdateCommentInput{UserID: 1, CommentID: 1, Content: "updated"})
		require.NoError(t, err)
		assert.Equal(t, "updated", comment.Content)
		assert.Equal(t, models.CommentStatusPending, comment.Status)
		assert.Nil(t, comment.ModeratedByID)
		assert.Nil(t, comment.ModeratedAt)
		assert.Nil(t, comment.ModerationNotes)
		assert.Nil(t, comment.FlaggedByID)
		assert.Nil(t, comment.FlaggedAt)
	})
}

func TestCommentService_DeleteComment_Ownership(t *testing.T) {
	t.Parallel()

	t.Run("author can delete", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, AuthorID: 1}, nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil)
		comment, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, CommentID: 1})
		require.NoError(t, err)
		assert.Equal(t, uint(1), comment.ID)
	})

	t.Run("non-author without moderator role is forbidden", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, AuthorID: 10}, nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil)
		_, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, CommentID: 1})
		assertForbiddenError(t, err)
	})

	t.Run("moderator can delete another user's comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, AuthorID: 10}, nil
		}
		canModerate := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewCommentService(commentRepo, noopPostRepo(), canModerate)
		comment, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, CommentID: 1})
		require.NoError(t, err)
		assert.Equal(t, uint(1), comment.ID)
	})
}

func TestCommentService_ListComments_RoleGating(t *testing.T) {
	t.Parallel()

	t.Run("anonymous defaults to approved only", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		var gotStatuses []models.CommentStatus
		commentRepo.listByPostFn = func(_ context.Context, _ uint, statuses []models.CommentStatus, _, _ int) ([]*models.Comment, error) {
			gotStatuses = statuses
			return nil, nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil)
		_, _, err := svc.ListComments(context.Background(), ListCommentsInput{PostID: 1})
		require.NoError(t, err)
		assert.Equal(t, []models.CommentStatus{models.CommentStatusApproved}, gotStatuses)
	})

	t.Run("non-moderator requesting pending is forbidden", func(t *testing.T) {
		t.Parallel()
		canModerate := func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), canModerate)
		_, _, err := svc.ListComments(context.Background(), ListCommentsInput{
			PostID: 1, UserID: 2, Statuses: []string{"pending"},
		})
		assertForbiddenError(t, err)
	})

	t.Run("unknown status token is invalid", func(t *testing.T) {
		t.Parallel()
		canModerate := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), canModerate)
		_, _, err := svc.ListComments(context.Background(), ListCommentsInput{
			PostID: 1, UserID: 2, Statuses: []string{"bogus"},
		})
		assertValidationError(t, err)
	})

	t.Run("moderator default covers review states", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		var gotStatuses []models.CommentStatus
		commentRepo.listByPostFn = func(_ context.Context, _ uint, statuses []models.CommentStatus, _, _ int) ([]*models.Comment, error) {
			gotStatuses = statuses
			return nil, nil
		}
		canModerate := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewCommentService(commentRepo, noopPostRepo(), canModerate)
		_, _, err := svc.ListComments(context.Background(), ListCommentsInput{PostID: 1, UserID: 2})
		require.NoError(t, err)
		assert.Equal(t, []models.CommentStatus{
			models.CommentStatusApproved,
			models.CommentStatusPending,
			models.CommentStatusFlagged,
		}, gotStatuses)
	})
}

func TestCommentService_ListComments_PaginationMeta(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.countByPostFn = func(_ context.Context, _ uint, _ []models.CommentStatus) (int64, error) {
		return 0, nil
	}
	svc := NewCommentService(commentRepo, noopPostRepo(), nil)

	_, meta, err := svc.ListComments(context.Background(), ListCommentsInput{PostID: 1})
	require.NoError(t, err)
	// An empty result still reports one page.
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 1}, meta)
}
