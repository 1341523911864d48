package notification

import (
	"context"
	"fmt"
	"strings"

	"rowmatch/internal/apperr"
	"rowmatch/internal/logger"
	"rowmatch/internal/metrics"
	"rowmatch/internal/user"
)

var ErrUnknownStatus = apperr.New(apperr.KindValidation, "Unknown notification status")

// Recipients resolves the addressee of an event.
type Recipients interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Mailer interface {
	SendAccepted(ctx context.Context, to, name, activityID string) error
	SendRejected(ctx context.Context, to, name, activityID string) error
	SendActivityFull(ctx context.Context, to, name, activityID string) error
}

// Service is the receiving end of /notify: it turns an event into a queued email.
type Service struct {
	users  Recipients
	mailer Mailer
}

func NewService(users Recipients, mailer Mailer) *Service {
	return &Service{users: users, mailer: mailer}
}

func (s *Service) Handle(ctx context.Context, e Event) error {
	if !e.Status.Valid() {
		return ErrUnknownStatus
	}

	u, err := s.users.FindByID(ctx, e.UserID)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.ID
	}

	switch e.Status {
	case StatusAccepted:
		err = s.mailer.SendAccepted(ctx, u.Email, name, e.ActivityID)
	case StatusRejected:
		err = s.mailer.SendRejected(ctx, u.Email, name, e.ActivityID)
	case StatusActivityFull:
		err = s.mailer.SendActivityFull(ctx, u.Email, name, e.ActivityID)
	}
	if err != nil {
		metrics.RecordNotification(string(e.Status), "undelivered")
		return fmt.Errorf("queue %s email: %w", e.Status, err)
	}

	metrics.RecordNotification(string(e.Status), "received")
	logger.Info("notification received", "user_id", e.UserID, "status", string(e.Status), "activity_id", e.ActivityID)
	return nil
}
