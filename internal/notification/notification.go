// Package notification carries status-change events from the activity workflow to users.
package notification

import (
	"context"
	"fmt"
)

type Status string

const (
	StatusAccepted     Status = "ACCEPTED"
	StatusRejected     Status = "REJECTED"
	StatusActivityFull Status = "ACTIVITY_FULL"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusActivityFull:
		return true
	}
	return false
}

type Event struct {
	UserID     string `json:"user_id" validate:"required"`
	Status     Status `json:"status" validate:"required,oneof=ACCEPTED REJECTED ACTIVITY_FULL"`
	ActivityID string `json:"activity_id" validate:"required"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s -> %s (%s)", e.Status, e.UserID, e.ActivityID)
}

// Dispatcher delivers a single event. Delivery is best-effort.
type Dispatcher interface {
	Notify(ctx context.Context, event Event) error
}

// Discard drops every event. Used when no notification endpoint is configured.
type Discard struct{}

func (Discard) Notify(context.Context, Event) error { return nil }
