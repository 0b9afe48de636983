package models

import "time"

// Moderator is an operator of the dashboard. Role holds an access role name
// ("full" or "users_only").
type Moderator struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Name           string    `gorm:"size:255" json:"name"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Role           string    `gorm:"size:20;not null;default:'full'" json:"role"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	SessionVersion int       `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Moderator) TableName() string {
	return "moderators"
}
