package dto

type CityRequest struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

type SchoolRequest struct {
	Name        string `json:"name"`
	CityID      uint   `json:"city_id"`
	EmailDomain string `json:"email_domain"`
}

// SchoolUpdateRequest has no city field: a school never moves to another city.
type SchoolUpdateRequest struct {
	Name        string `json:"name"`
	EmailDomain string `json:"email_domain"`
}

type SchoolRow struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	EmailDomain string `json:"email_domain"`
	CityID      uint   `json:"city_id"`
	CityName    string `json:"city_name"`
}
