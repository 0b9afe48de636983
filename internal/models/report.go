package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentReport is one end-user report against a content item. Reports only
// go away together with the item they point at.
type ContentReport struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       ContentKind `gorm:"size:20;not null" json:"kind"`
	ItemID     uint        `gorm:"not null;index" json:"item_id"`
	ReporterID *uint       `gorm:"index" json:"reporter_id,omitempty"`
	Reason     string      `gorm:"size:500" json:"reason"`
	CreatedAt  time.Time   `json:"created_at"`

	Item ContentItem `gorm:"foreignKey:ItemID" json:"-"`
}

func (r *ContentReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ContentReport) TableName() string {
	return "content_reports"
}
