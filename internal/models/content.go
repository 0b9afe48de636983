package models

import (
	"time"
)

// Status is the moderation state of a content item.
type Status string

const (
	StatusReceived Status = "received"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every moderation state in display order.
var Statuses = []Status{StatusReceived, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ContentKind tags which content family an item belongs to.
type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindSpotted ContentKind = "spotted"
)

func (k ContentKind) Valid() bool {
	return k == KindPost || k == KindSpotted
}

// DefaultSpottedColor is used for spotted items submitted without a colour.
const DefaultSpottedColor = "#6366f1"

// ContentItem is a post or a spotted item. Spotted items additionally carry
// Visibility and Color, which never influence moderation.
type ContentItem struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	Kind              ContentKind `gorm:"size:20;not null;index:idx_content_kind_status,priority:1" json:"kind"`
	CreatorID         uint        `gorm:"not null;index" json:"creator_id"`
	SchoolID          *uint       `gorm:"index" json:"school_id"`
	CityID            *uint       `gorm:"index" json:"city_id"`
	Content           string      `gorm:"type:text;not null" json:"content"`
	CreationTimestamp time.Time   `gorm:"not null;index" json:"creation_timestamp"`
	Status            Status      `gorm:"size:20;not null;default:'received';index:idx_content_kind_status,priority:2" json:"status"`
	ReportCount       int         `gorm:"not null;default:0;index" json:"report_count"`
	LikesCount        int         `gorm:"not null;default:0" json:"likes_count"`
	ApprovedAt        *time.Time  `json:"approved_at,omitempty"`
	Visibility        string      `gorm:"size:30" json:"visibility,omitempty"`
	Color             string      `gorm:"size:20" json:"color,omitempty"`
	UpdatedAt         time.Time   `json:"updated_at"`

	Creator User    `gorm:"foreignKey:CreatorID" json:"-"`
	School  *School `gorm:"foreignKey:SchoolID" json:"-"`
	City    *City   `gorm:"foreignKey:CityID" json:"-"`
}

func (ContentItem) TableName() string {
	return "content_items"
}
