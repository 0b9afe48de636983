package dto

type UserRow struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	PersonalEmail *string `json:"personal_email"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Role          string  `json:"role"`
	SchoolID      *uint   `json:"school_id"`
	CityID        *uint   `json:"city_id"`
	SchoolName    *string `json:"school_name"`
	CityName      *string `json:"city_name"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}
