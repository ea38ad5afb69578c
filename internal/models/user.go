package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a registered customer or administrator.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session binds a session cookie to a user until ExpiresAt.
type Session struct {
	ID        string    `json:"sessionId"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expires"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string   `json:"message"`
	Code    int      `json:"code"`
	User    AuthUser `json:"user"`
}

type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// CurrentUser describes the caller of GET /api/auth/me.
type CurrentUser struct {
	User           *User    `json:"user"`
	Session        *Session `json:"session"`
	IsUserLoggedIn bool     `json:"isUserLoggedIn"`
}
