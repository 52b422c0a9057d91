package models

import "time"

type Comment struct {
	ID        int        `gorm:"primaryKey" json:"id"`
	PostID    int        `gorm:"not null;index" json:"post_id"`
	ParentID  *int       `gorm:"index" json:"parent_id,omitempty"`
	AuthorID  int        `gorm:"not null" json:"author_id"`
	Author    User       `gorm:"foreignKey:AuthorID" json:"author"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	Upvotes   int        `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int        `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CommentRequest struct {
	Body string `json:"body"`
}
