package server

import (
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer builds a Server over an in-memory database without touching
// Redis or the Prometheus registry.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := setupTestDB(t)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s := &Server{
		config: &config.Config{
			JWTSecret: "unit-test-secret-unit-test-secret!!!",
			Env:       "test",
		},
		db:          db,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
	s.userService = service.NewUserService(userRepo)
	s.postService = service.NewPostService(postRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo, s.userService.CanModerate)
	s.moderationService = service.NewModerationService(commentRepo, userRepo)
	return s
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       "Test post",
		Content:     "Test post content",
		AuthorID:    authorID,
		IsPublished: true,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func createTestComment(t *testing.T, db *gorm.DB, postID, authorID uint, status models.CommentStatus) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Content:  "Test comment",
		PostID:   postID,
		AuthorID: authorID,
		Status:   status,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}
