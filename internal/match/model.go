package match

import (
	"time"

	"rowmatch/internal/availability"
	"rowmatch/internal/rowing"
)

// Match is a confirmed assignment of a user to a position in an activity.
// Gender, Competitive, Organisation and Availability are a snapshot taken at acceptance.
type Match struct {
	ID           string                 `db:"id" json:"id"`
	ActivityID   string                 `db:"activity_id" json:"activity_id"`
	UserID       string                 `db:"user_id" json:"user_id"`
	Position     rowing.Position        `db:"position" json:"position"`
	Gender       rowing.Gender          `db:"gender" json:"gender,omitempty"`
	Competitive  bool                   `db:"competitive" json:"competitive"`
	Organisation string                 `db:"organisation" json:"organisation,omitempty"`
	Availability availability.Intervals `db:"availability" json:"availability,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}
