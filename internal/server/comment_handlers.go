package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/comments (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		PostID   uint   `json:"post_id"`
		ParentID *uint  `json:"parent_id"`
		Content  string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		PostID:   req.PostID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventCommentCreated, map[string]interface{}{
		"post_id": comment.PostID,
		"comment": comment,
	})

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetPostComments handles GET /api/comments/post/:postId (public; a token
// widens the visible statuses for moderators).
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)

	comments, pagination, err := s.commentService.ListComments(c.UserContext(), service.ListCommentsInput{
		PostID:   postID,
		UserID:   currentUserID,
		Statuses: parseStatuses(c),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"comments":   comments,
		"pagination": pagination,
	})
}

// UpdateComment handles PUT /api/comments/:id (author only). An edit resets
// the comment to pending review.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventCommentUpdated, map[string]interface{}{
		"post_id": comment.PostID,
		"comment": comment,
	})

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id (author or moderator)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    userID,
		CommentID: commentID,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventCommentDeleted, map[string]interface{}{
		"post_id":    comment.PostID,
		"comment_id": commentID,
	})

	return c.SendStatus(fiber.StatusOK)
}
