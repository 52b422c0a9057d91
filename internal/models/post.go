package models

import "time"

type PostType string

const (
	PostDiscussion   PostType = "discussion"
	PostQuestion     PostType = "question"
	PostFeedback     PostType = "feedback"
	PostAnnouncement PostType = "announcement"
)

// Valid reports whether t is one of the known post types.
func (t PostType) Valid() bool {
	switch t {
	case PostDiscussion, PostQuestion, PostFeedback, PostAnnouncement:
		return true
	}
	return false
}

type Post struct {
	ID           int        `gorm:"primaryKey" json:"id"`
	TeamID       int        `gorm:"not null;index" json:"team_id"`
	AuthorID     int        `gorm:"not null;index" json:"author_id"`
	Author       User       `gorm:"foreignKey:AuthorID" json:"author"`
	PostType     PostType   `gorm:"size:20;not null;default:discussion" json:"post_type"`
	Title        string     `gorm:"size:300;not null" json:"title"`
	Slug         string     `gorm:"size:300" json:"slug"`
	Body         string     `gorm:"type:text;not null" json:"body"`
	Upvotes      int        `gorm:"not null;default:0" json:"upvotes"`
	Downvotes    int        `gorm:"not null;default:0" json:"downvotes"`
	CommentCount int        `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time  `json:"created_at"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreatePostRequest struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	PostType PostType `json:"post_type"`
}

type UpdatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
