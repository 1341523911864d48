package user

import (
	"time"

	"rowmatch/internal/availability"
	"rowmatch/internal/rowing"

	"github.com/lib/pq"
)

// User is a rower profile keyed by net id.
type User struct {
	ID              string                 `db:"id" json:"id"`
	Email           string                 `db:"email" json:"email"`
	FirstName       string                 `db:"first_name" json:"first_name"`
	LastName        string                 `db:"last_name" json:"last_name"`
	Positions       rowing.Positions       `db:"positions" json:"positions"`
	Availability    availability.Intervals `db:"availability" json:"availability"`
	CoxCertificates pq.StringArray         `db:"cox_certificates" json:"cox_certificates"`
	Gender          rowing.Gender          `db:"gender" json:"gender,omitempty"`
	Organisation    string                 `db:"organisation" json:"organisation,omitempty"`
	Competitive     bool                   `db:"competitive" json:"competitive"`
	Role            string                 `db:"role" json:"role"`
	PasswordHash    string                 `db:"password_hash" json:"-"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	ID              string                  `json:"id" validate:"required,alphanum,min=2,max=64" example:"efe"`
	Email           string                  `json:"email" validate:"required,email" example:"efe@example.com"`
	Password        string                  `json:"password" validate:"required,min=8" example:"password123"`
	FirstName       string                  `json:"first_name" validate:"required" example:"Efe"`
	LastName        string                  `json:"last_name" validate:"required" example:"Unal"`
	Positions       []rowing.Position       `json:"positions" validate:"dive,oneof=COX COACH PORT STARBOARD SCULLING"`
	Availability    []availability.Interval `json:"availability"`
	CoxCertificates []string                `json:"cox_certificates"`
	Gender          rowing.Gender           `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Organisation    string                  `json:"organisation,omitempty"`
	Competitive     bool                    `json:"competitive"`
}

type LoginRequest struct {
	ID       string `json:"id" validate:"required" example:"efe"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// UpdateProfileRequest is merged into the stored profile; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Email           *string            `json:"email,omitempty" validate:"omitempty,email"`
	FirstName       *string            `json:"first_name,omitempty"`
	LastName        *string            `json:"last_name,omitempty"`
	Positions       *[]rowing.Position `json:"positions,omitempty" validate:"omitempty,dive,oneof=COX COACH PORT STARBOARD SCULLING"`
	CoxCertificates *[]string          `json:"cox_certificates,omitempty"`
	Gender          *rowing.Gender     `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Organisation    *string            `json:"organisation,omitempty"`
	Competitive     *bool              `json:"competitive,omitempty"`
}

type EditAvailabilityRequest struct {
	Old availability.Interval `json:"old"`
	New availability.Interval `json:"new"`
}
