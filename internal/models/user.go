package models

import (
	"time"
)

// UserRole is the designation of an end-user account. It is unrelated to
// moderator roles.
type UserRole string

const (
	UserRoleUser           UserRole = "user"
	UserRoleRepresentative UserRole = "representative"
)

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleRepresentative
}

// User is an end-user account of the community app.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	FirstName         string    `gorm:"size:255" json:"first_name"`
	LastName          string    `gorm:"size:255;index" json:"last_name"`
	Email             string    `gorm:"size:255;index" json:"email"`
	PersonalEmail     *string   `gorm:"size:255" json:"personal_email"`
	SchoolID          *uint     `gorm:"index" json:"school_id"`
	CityID            *uint     `gorm:"index" json:"city_id"`
	Role              UserRole  `gorm:"size:20;not null;default:'user'" json:"role"`
	CreationTimestamp time.Time `gorm:"index" json:"creation_timestamp"`
	UpdatedAt         time.Time `json:"-"`

	School *School `gorm:"foreignKey:SchoolID;constraint:OnDelete:RESTRICT" json:"-"`
	City   *City   `gorm:"foreignKey:CityID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
