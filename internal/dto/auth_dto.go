package dto

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ModeratorResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type LoginResponse struct {
	Status    string            `json:"status"`
	Token     string            `json:"token"`
	Role      string            `json:"role"`
	ExpiresAt time.Time         `json:"expires_at"`
	Moderator ModeratorResponse `json:"moderator"`
	Sections  []string          `json:"sections"`
}

type VerifyResponse struct {
	ModeratorID uint     `json:"moderator_id"`
	Role        string   `json:"role"`
	Sections    []string `json:"sections"`
}
