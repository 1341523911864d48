package activity

import "context"

type Repository interface {
	FindByID(ctx context.Context, id string) (*Activity, error)
	// LockByID reads the activity with a row lock. Only meaningful inside a transaction.
	LockByID(ctx context.Context, id string) (*Activity, error)
	FindAll(ctx context.Context) ([]Activity, error)
	Save(ctx context.Context, a *Activity) error
	Delete(ctx context.Context, id string) error
}
