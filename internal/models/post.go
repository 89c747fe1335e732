// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a published article on the Inkwell platform.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Excerpt     string     `json:"excerpt"`
	ImageURL    string     `json:"image_url"`
	Tags        []string   `gorm:"serializer:json" json:"tags"`
	// No column default: gorm drops zero-valued fields that carry one, which
	// would silently publish drafts on insert.
	IsPublished bool       `gorm:"not null" json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ViewCount   int        `gorm:"not null;default:0" json:"view_count"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes    []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
