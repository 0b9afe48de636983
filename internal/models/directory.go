package models

import "time"

type City struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Region    string    `gorm:"size:255" json:"region"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (City) TableName() string {
	return "cities"
}

// School belongs to exactly one city. CityID is fixed once the row exists.
type School struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	CityID      uint      `gorm:"not null;index" json:"city_id"`
	EmailDomain string    `gorm:"size:255" json:"email_domain"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	City City `gorm:"foreignKey:CityID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (School) TableName() string {
	return "schools"
}
