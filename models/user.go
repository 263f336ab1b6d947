package models

import "time"

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Profile is a business owner account.
type Profile struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       *string    `json:"fullName,omitempty"`
	HashedPassword []byte     `json:"-"`
	Plan           *string    `json:"plan,omitempty"`
	SetupPaid      bool       `json:"setupPaid"`
	TrialEndsAt    *time.Time `json:"trialEndsAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
