package match

import "context"

type Repository interface {
	ExistsFor(ctx context.Context, activityID, userID string) (bool, error)
	Find(ctx context.Context, activityID, userID string) (*Match, error)
	Save(ctx context.Context, m *Match) error
	Delete(ctx context.Context, id string) error
	DeleteAllForActivity(ctx context.Context, activityID string) error
	ListByActivity(ctx context.Context, activityID string) ([]Match, error)
}
