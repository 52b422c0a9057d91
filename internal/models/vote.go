package models

import "time"

// Target kinds a vote can point at.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Vote tracks one user's vote on one post or comment. Direction is 1 or -1.
type Vote struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	VoterID    int       `gorm:"not null;uniqueIndex:idx_votes_voter_target" json:"voter_id"`
	TargetType string    `gorm:"size:10;not null;uniqueIndex:idx_votes_voter_target;index:idx_votes_target" json:"target_type"`
	TargetID   int       `gorm:"not null;uniqueIndex:idx_votes_voter_target;index:idx_votes_target" json:"target_id"`
	Direction  int       `gorm:"not null;check:chk_votes_direction,direction IN (-1, 1)" json:"direction"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
