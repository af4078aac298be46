package dto

import "time"

// CredentialsRequest carries the login and password of a customer.
type CredentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ProfileResponse describes the signed-in customer.
type ProfileResponse struct {
	ID        int64     `json:"id"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse returns the issued session token.
type SessionResponse struct {
	Token string `json:"token"`
}
