package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts (public; auth optional for liked flags)
func (s *Server) GetPosts(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)

	posts, pagination, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Search:        c.Query("search"),
		Tag:           c.Query("tag"),
		AuthorID:      uint(c.QueryInt("author_id", 0)),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", 0),
		CurrentUserID: currentUserID,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":      posts,
		"pagination": pagination,
	})
}

// GetPost handles GET /api/posts/:id (public; auth optional)
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.UserContext(), postID, currentUserID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts (protected)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Excerpt  string   `json:"excerpt"`
		ImageURL string   `json:"image_url"`
		Tags     []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   userID,
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		ImageURL: req.ImageURL,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventPostCreated, map[string]interface{}{
		"post":   post,
		"author": userSummary(&post.Author),
	})

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id (author only)
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Excerpt  string   `json:"excerpt"`
		ImageURL string   `json:"image_url"`
		Tags     []string `json:"tags"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   userID,
		PostID:   postID,
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		ImageURL: req.ImageURL,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventPostUpdated, map[string]interface{}{
		"post": post,
	})

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id (author only)
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: userID,
		PostID: postID,
	}); err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventPostDeleted, map[string]interface{}{
		"post_id": postID,
	})

	return c.SendStatus(fiber.StatusOK)
}

// ToggleLike handles POST /api/posts/:id/like (protected). Likes the post if
// not yet liked, otherwise removes the like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.ToggleLike(c.UserContext(), userID, postID)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishBroadcastEvent(EventPostLikeToggled, map[string]interface{}{
		"post_id": postID,
		"liked":   liked,
		"user_id": userID,
	})

	return c.JSON(fiber.Map{"liked": liked})
}
