// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var postTags = []string{
	"go", "programming", "webdev", "databases", "devops", "cloud",
	"design", "writing", "productivity", "career", "opinion", "tutorial",
	"linux", "security", "testing", "architecture", "frontend", "backend",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db)

	users, err := createUsers(db, factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	posts, err := createPosts(factory, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	comments, err := createComments(factory, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ %d comments created", comments)

	likes, err := createLikes(factory, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("✓ %d likes created", likes)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(db *gorm.DB, factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// Always include known accounts for every role so the moderation queue
	// and admin views are reachable out of the box.
	baseUsers := []struct {
		username string
		role     string
	}{
		{"admin", models.RoleAdmin},
		{"editor", models.RoleModerator},
		{"test", models.RoleUser},
	}
	for _, b := range baseUsers {
		user := &models.User{
			Username: b.username,
			Email:    fmt.Sprintf("%s@example.com", b.username),
			Password: string(hashedPassword),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", b.username),
			Role:     b.role,
			IsActive: true,
		}
		if err := db.Create(user).Error; err == nil {
			users = append(users, user)
		}
	}

	for i := len(users); i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func createPosts(factory *Factory, users []*models.User, count int) ([]*models.Post, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	posts := make([]*models.Post, 0, count)

	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]

		// Roughly one in ten posts stays a draft.
		isDraft := r.Float32() < 0.1
		post, err := factory.CreatePost(author, func(p *models.Post) {
			if isDraft {
				p.IsPublished = false
			}
		})
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}

	return posts, nil
}

// createComments builds threads on published posts covering every moderation
// state, including replies and flagged comments with a recorded flagger.
func createComments(factory *Factory, users []*models.User, posts []*models.Post) (int, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	statuses := []models.CommentStatus{
		models.CommentStatusApproved,
		models.CommentStatusApproved,
		models.CommentStatusApproved,
		models.CommentStatusPending,
		models.CommentStatusFlagged,
		models.CommentStatusRejected,
	}

	total := 0
	for _, post := range posts {
		if !post.IsPublished {
			continue
		}

		count := r.Intn(6)
		for i := 0; i < count; i++ {
			author := users[r.Intn(len(users))]
			status := statuses[r.Intn(len(statuses))]

			comment, err := factory.CreateComment(author, post, func(c *models.Comment) {
				c.Status = status
				switch status {
				case models.CommentStatusApproved, models.CommentStatusRejected:
					stampModeration(c, users, r)
				case models.CommentStatusFlagged:
					stampFlag(c, users, r, author.ID)
				}
			})
			if err != nil {
				return total, err
			}
			total++

			// Approved comments sometimes get a reply (one level only).
			if status == models.CommentStatusApproved && r.Float32() < 0.3 {
				replier := users[r.Intn(len(users))]
				_, err := factory.CreateComment(replier, post, func(c *models.Comment) {
					c.ParentID = &comment.ID
					c.Status = models.CommentStatusApproved
					stampModeration(c, users, r)
				})
				if err != nil {
					return total, err
				}
				total++
			}
		}
	}

	return total, nil
}

func createLikes(factory *Factory, users []*models.User, posts []*models.Post) (int, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	total := 0
	for _, post := range posts {
		if !post.IsPublished {
			continue
		}
		count := r.Intn(len(users)/2 + 1)
		for i := 0; i < count; i++ {
			user := users[r.Intn(len(users))]
			if err := factory.CreateLike(user, post); err != nil {
				return total, err
			}
			total++
		}
	}

	return total, nil
}

func stampModeration(c *models.Comment, users []*models.User, r *rand.Rand) {
	mod := pickModerator(users, r)
	if mod == nil {
		return
	}
	now := time.Now()
	c.ModeratedByID = &mod.ID
	c.ModeratedAt = &now
}

func stampFlag(c *models.Comment, users []*models.User, r *rand.Rand, authorID uint) {
	for range users {
		flagger := users[r.Intn(len(users))]
		if flagger.ID == authorID {
			continue
		}
		now := time.Now()
		notes := "Flag reason: seeded report"
		c.FlaggedByID = &flagger.ID
		c.FlaggedAt = &now
		c.ModerationNotes = &notes
		return
	}
}

func pickModerator(users []*models.User, r *rand.Rand) *models.User {
	mods := make([]*models.User, 0, 2)
	for _, u := range users {
		if u.CanModerate() {
			mods = append(mods, u)
		}
	}
	if len(mods) == 0 {
		return nil
	}
	return mods[r.Intn(len(mods))]
}
