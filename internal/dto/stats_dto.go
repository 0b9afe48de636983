package dto

type TotalStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalPosts      int64 `json:"total_posts"`
	TotalSpotted    int64 `json:"total_spotted"`
	ApprovedPosts   int64 `json:"approved_posts"`
	ApprovedSpotted int64 `json:"approved_spotted"`
	PendingPosts    int64 `json:"pending_posts"`
	PendingSpotted  int64 `json:"pending_spotted"`
	ReportedPosts   int64 `json:"reported_posts"`
	ReportedSpotted int64 `json:"reported_spotted"`
	TotalCities     int64 `json:"total_cities"`
	TotalSchools    int64 `json:"total_schools"`
}

type CityStats struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Region       string `json:"region"`
	UserCount    int64  `json:"user_count"`
	SchoolCount  int64  `json:"school_count"`
	PostCount    int64  `json:"post_count"`
	SpottedCount int64  `json:"spotted_count"`
}

type SchoolStats struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	CityID       uint   `json:"city_id"`
	CityName     string `json:"city_name"`
	UserCount    int64  `json:"user_count"`
	PostCount    int64  `json:"post_count"`
	SpottedCount int64  `json:"spotted_count"`
}

// TimeStats is one calendar month ("2006-01") of a creation series.
type TimeStats struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type Statistics struct {
	Totals          TotalStats    `json:"totals"`
	CitiesStats     []CityStats   `json:"cities_stats"`
	SchoolsStats    []SchoolStats `json:"schools_stats"`
	UsersOverTime   []TimeStats   `json:"users_over_time"`
	PostsOverTime   []TimeStats   `json:"posts_over_time"`
	SpottedOverTime []TimeStats   `json:"spotted_over_time"`
}
