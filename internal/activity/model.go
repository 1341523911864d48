package activity

import (
	"time"

	"rowmatch/internal/availability"
	"rowmatch/internal/rowing"
)

type Kind string

const (
	KindTraining    Kind = "Training"
	KindCompetition Kind = "Competition"
)

// Competition holds the extra sign-up requirements of a competition.
// Empty Gender or Organisation means anyone may apply.
type Competition struct {
	Gender              rowing.Gender `json:"gender,omitempty"`
	Organisation        string        `json:"organisation,omitempty"`
	RequiresCompetitive bool          `json:"requires_competitive"`
}

// Activity is a Training or a Competition. Competition is non-nil exactly when Kind is KindCompetition.
type Activity struct {
	ID          string           `json:"id"`
	Owner       string           `json:"owner"`
	Name        string           `json:"name"`
	Location    string           `json:"location"`
	BoatType    string           `json:"boat_type"`
	Kind        Kind             `json:"type"`
	Start       time.Time        `json:"start"`
	Positions   rowing.Positions `json:"positions"`
	Applicants  []string         `json:"applicants"`
	Competition *Competition     `json:"competition,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (a *Activity) Expired(now time.Time) bool {
	return a.Start.Before(now)
}

func (a *Activity) Full() bool {
	return len(a.Positions) == 0
}

func (a *Activity) HasApplicant(userID string) bool {
	for _, u := range a.Applicants {
		if u == userID {
			return true
		}
	}
	return false
}

func (a *Activity) addApplicant(userID string) {
	if !a.HasApplicant(userID) {
		a.Applicants = append(a.Applicants, userID)
	}
}

func (a *Activity) removeApplicant(userID string) bool {
	for i, u := range a.Applicants {
		if u == userID {
			a.Applicants = append(a.Applicants[:i:i], a.Applicants[i+1:]...)
			return true
		}
	}
	return false
}

type CreateActivityRequest struct {
	Name                string            `json:"name" validate:"required" example:"Morning eight"`
	Location            string            `json:"location" validate:"required" example:"Delft"`
	BoatType            string            `json:"boat_type" validate:"required" example:"8+"`
	Type                Kind              `json:"type" validate:"required,oneof=Training Competition" example:"Training"`
	Start               time.Time         `json:"start"`
	Positions           []rowing.Position `json:"positions" validate:"required,min=1,dive,oneof=COX COACH PORT STARBOARD SCULLING"`
	Gender              rowing.Gender     `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Organisation        string            `json:"organisation,omitempty"`
	RequiresCompetitive *bool             `json:"requires_competitive,omitempty"`
}

// UpdateActivityRequest is a patch: nil fields keep their current value.
type UpdateActivityRequest struct {
	Name                *string            `json:"name,omitempty"`
	Location            *string            `json:"location,omitempty"`
	BoatType            *string            `json:"boat_type,omitempty"`
	Start               *time.Time         `json:"start,omitempty"`
	Positions           *[]rowing.Position `json:"positions,omitempty" validate:"omitempty,dive,oneof=COX COACH PORT STARBOARD SCULLING"`
	Gender              *rowing.Gender     `json:"gender,omitempty"`
	Organisation        *string            `json:"organisation,omitempty"`
	RequiresCompetitive *bool              `json:"requires_competitive,omitempty"`
}

func (p UpdateActivityRequest) touchesCompetition() bool {
	return p.Gender != nil || p.Organisation != nil || p.RequiresCompetitive != nil
}

// SignUpRequest is what a user offers when applying.
type SignUpRequest struct {
	UserID       string
	Availability []availability.Interval
	Gender       rowing.Gender
	Organisation string
	Competitive  bool
}

// SignUpBody is the HTTP form of a sign-up. Missing fields are filled from the user's profile.
type SignUpBody struct {
	Availability *[]availability.Interval `json:"availability,omitempty"`
	Gender       *rowing.Gender           `json:"gender,omitempty"`
	Organisation *string                  `json:"organisation,omitempty"`
	Competitive  *bool                    `json:"competitive,omitempty"`
}

type Selection struct {
	UserID   string          `json:"user_id" validate:"required" example:"Efe"`
	Position rowing.Position `json:"position" validate:"required,oneof=COX COACH PORT STARBOARD SCULLING" example:"COACH"`
}

type UserRequest struct {
	UserID string `json:"user_id" validate:"required" example:"Efe"`
}

// Candidate is the profile data the accept step checks against.
type Candidate struct {
	UserID          string
	Positions       []rowing.Position
	CoxCertificates []string
	Gender          rowing.Gender
	Competitive     bool
	Organisation    string
	Availability    availability.Intervals
}

type Participant struct {
	UserID    string          `json:"user_id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Position  rowing.Position `json:"position"`
}

type MessageResponse struct {
	Message string `json:"message" example:"User Efe signed up for activity : 0b6c..."`
}
