package dto

import "time"

// ContentRow is a post or spotted item joined with its creator, school and
// city for display.
type ContentRow struct {
	ID                uint       `json:"id"`
	Kind              string     `json:"kind"`
	Content           string     `json:"content"`
	CreatorID         uint       `json:"creator_id"`
	CreationTimestamp time.Time  `json:"creation_timestamp"`
	LikesCount        int        `json:"likes_count"`
	Status            string     `json:"status"`
	ReportCount       int        `json:"report_count"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	Visibility        string     `json:"visibility,omitempty"`
	Color             string     `json:"color,omitempty"`
	CreatorFirstName  string     `json:"creator_first_name"`
	CreatorLastName   string     `json:"creator_last_name"`
	CreatorEmail      string     `json:"creator_email"`
	SchoolName        *string    `json:"school_name"`
	CityName          *string    `json:"city_name"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// SubmitContentRequest is the ingestion payload for a new item.
type SubmitContentRequest struct {
	Kind              string     `json:"kind"`
	CreatorID         uint       `json:"creator_id"`
	SchoolID          *uint      `json:"school_id"`
	CityID            *uint      `json:"city_id"`
	Content           string     `json:"content"`
	Visibility        string     `json:"visibility"`
	Color             string     `json:"color"`
	CreationTimestamp *time.Time `json:"creation_timestamp"`
}

// ReportContentRequest is the ingestion payload for an end-user report.
type ReportContentRequest struct {
	Kind       string `json:"kind"`
	ItemID     uint   `json:"item_id"`
	ReporterID *uint  `json:"reporter_id"`
	Reason     string `json:"reason"`
}
