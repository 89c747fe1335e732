// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

// Comment moderation states.
const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusFlagged  CommentStatus = "flagged"
)

// ValidCommentStatus reports whether s is a known moderation state.
func ValidCommentStatus(s CommentStatus) bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected, CommentStatusFlagged:
		return true
	}
	return false
}

// Comment represents a comment on a post. A comment with a non-nil ParentID
// is a reply; any comment may be replied to, though post listings attach one
// level of replies.
type Comment struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	Content  string        `gorm:"type:text;not null" json:"content"`
	PostID   uint          `gorm:"not null;index" json:"post_id"`
	AuthorID uint          `gorm:"not null;index" json:"author_id"`
	ParentID *uint         `gorm:"index" json:"parent_id,omitempty"`
	Status   CommentStatus `gorm:"not null;default:pending;index" json:"status"`

	// Moderation audit fields. ModeratedBy/ModeratedAt/ModerationNotes record
	// the most recent approve/reject decision; FlaggedBy/FlaggedAt record the
	// most recent flag. Editing a comment clears all five.
	ModeratedByID   *uint      `json:"moderated_by_id,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	ModerationNotes *string    `json:"moderation_notes,omitempty"`
	FlaggedByID     *uint      `json:"flagged_by_id,omitempty"`
	FlaggedAt       *time.Time `json:"flagged_at,omitempty"`

	Author       User      `gorm:"foreignKey:AuthorID" json:"author"`
	Moderator    *User     `gorm:"foreignKey:ModeratedByID" json:"moderator,omitempty"`
	FlaggedBy    *User     `gorm:"foreignKey:FlaggedByID" json:"flagged_by,omitempty"`
	Post         *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Replies      []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClearModeration resets the comment to the pending state and wipes every
// moderation audit field. Used when the author edits a comment.
func (c *Comment) ClearModeration() {
	c.Status = CommentStatusPending
	c.ModeratedByID = nil
	c.ModeratedAt = nil
	c.ModerationNotes = nil
	c.FlaggedByID = nil
	c.FlaggedAt = nil
}
