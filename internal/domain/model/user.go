package model

import "time"

// User is a storefront customer. Login is stored lower-cased.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an authenticated customer together with the token proving it.
type Session struct {
	UserID int64
	Login  string
	Token  string
}
