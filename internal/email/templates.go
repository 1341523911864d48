package email

import (
	"context"
	"fmt"
)

const (
	TypeAccepted     = "accepted"
	TypeRejected     = "rejected"
	TypeActivityFull = "activity_full"
)

const signature = "\n\n- Rowmatch"

func (s *Service) SendAccepted(ctx context.Context, to, name, activityID string) error {
	body := fmt.Sprintf(`Hi %s,

Good news: you have been accepted for activity %s.
Check the participants list for the rest of the crew.`, name, activityID)

	return s.Send(ctx, to, name, TypeAccepted, "You are in - activity "+activityID, body+signature)
}

func (s *Service) SendRejected(ctx context.Context, to, name, activityID string) error {
	body := fmt.Sprintf(`Hi %s,

Unfortunately your application for activity %s was not accepted.`, name, activityID)

	return s.Send(ctx, to, name, TypeRejected, "Application update - activity "+activityID, body+signature)
}

func (s *Service) SendActivityFull(ctx context.Context, to, name, activityID string) error {
	body := fmt.Sprintf(`Hi %s,

All positions of activity %s are filled. You stay on the waitlist
and will be considered if a spot opens up.`, name, activityID)

	return s.Send(ctx, to, name, TypeActivityFull, "Activity "+activityID+" is full", body+signature)
}
