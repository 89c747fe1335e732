// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		Password:  string(hashedPassword),
		FirstName: first,
		LastName:  last,
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:      models.RoleUser,
		IsActive:  true,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample `models.Post` for the given
// author. Posts get a realistic created_at spread over the past 90 days.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	content := gofakeit.Paragraph(3, 5, 12, "\n\n")
	excerpt := content
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}

	post := &models.Post{
		Title:       gofakeit.Sentence(6),
		Content:     content,
		Excerpt:     excerpt,
		Tags:        f.pickTags(),
		AuthorID:    author.ID,
		IsPublished: true,
	}

	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	createdAt := time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	post.CreatedAt = createdAt
	publishedAt := createdAt
	post.PublishedAt = &publishedAt

	if f.r.Float32() < 0.4 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}

	if !post.IsPublished {
		post.PublishedAt = nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  gofakeit.Sentence(10),
		PostID:   post.ID,
		AuthorID: author.ID,
		Status:   models.CommentStatusPending,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`. Duplicate likes are
// silently ignored so random seeding never trips the unique index.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Where(models.Like{UserID: user.ID, PostID: post.ID}).
		FirstOrCreate(like).Error
}

func (f *Factory) pickTags() []string {
	count := f.r.Intn(3) + 1
	tags := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for len(tags) < count {
		tag := postTags[f.r.Intn(len(postTags))]
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
