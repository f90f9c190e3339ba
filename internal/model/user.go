package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents any account in the system; Role decides what it can do.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Role             Role       `json:"role"`
	Department       string     `json:"department"`
	ProctorID        *uuid.UUID `json:"proctor_id,omitempty"`
	RefreshTokenHash *string    `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RefreshRequest is the payload for rotating a token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LoginResponse is returned after a successful login or refresh.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
	Role       Role   `json:"role" binding:"required,oneof=Admin Principal Professor StudentProctor Student"`
	Department string `json:"department" binding:"omitempty,max=64"`
	ProctorID  string `json:"proctor_id" binding:"omitempty,uuid"`
}
