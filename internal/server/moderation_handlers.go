package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ApproveComment handles POST /api/comments/:id/approve (moderator)
func (s *Server) ApproveComment(c *fiber.Ctx) error {
	return s.moderateComment(c, "approved")
}

// RejectComment handles POST /api/comments/:id/reject (moderator)
func (s *Server) RejectComment(c *fiber.Ctx) error {
	return s.moderateComment(c, "rejected")
}

func (s *Server) moderateComment(c *fiber.Ctx, action string) error {
	actorID := c.Locals("userID").(uint)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.ModerateCommentInput{
		ActorID:   actorID,
		CommentID: commentID,
		Reason:    req.Reason,
	}

	var comment *models.Comment
	if action == "approved" {
		comment, err = s.moderationService.ApproveComment(c.UserContext(), in)
	} else {
		comment, err = s.moderationService.RejectComment(c.UserContext(), in)
	}
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventCommentModerated, map[string]interface{}{
		"comment":  comment,
		"actor_id": actorID,
		"action":   action,
	})

	return c.JSON(comment)
}

// FlagComment handles POST /api/comments/:id/flag (any authenticated user
// except the comment's author). Flagging emits no realtime event.
func (s *Server) FlagComment(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.moderationService.FlagComment(c.UserContext(), service.ModerateCommentInput{
		ActorID:   actorID,
		CommentID: commentID,
		Reason:    req.Reason,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(comment)
}

// ModerationQueue handles GET /api/comments/moderation/queue (moderator)
func (s *Server) ModerationQueue(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)

	comments, pagination, err := s.moderationService.Queue(c.UserContext(), service.ModerationQueueInput{
		ActorID:  actorID,
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
