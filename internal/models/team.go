package models

import "time"

// Team is the container posts live in. Only members may see its posts.
type Team struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;unique;not null" json:"name"`
	CreatedBy int       `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamMember struct {
	TeamID    int       `gorm:"primaryKey" json:"team_id"`
	UserID    int       `gorm:"primaryKey;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
