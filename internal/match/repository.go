package match

import (
	"context"
	"database/sql"
	"errors"

	"rowmatch/internal/apperr"
	"rowmatch/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrMatchNotFound = apperr.New(apperr.KindNotFound, "match not found")

type repository struct {
	db sqlx.ExtContext
}

// NewRepository accepts either a *sqlx.DB or a *sqlx.Tx.
func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

func (r *repository) ExistsFor(ctx context.Context, activityID, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM matches
			WHERE activity_id = $1 AND user_id = $2
		)
	`

	return db.Exists(ctx, r.db, query, activityID, userID)
}

func (r *repository) Find(ctx context.Context, activityID, userID string) (*Match, error) {
	query := `
		SELECT id, activity_id, user_id, position, gender, competitive, organisation, availability, created_at
		FROM matches
		WHERE activity_id = $1 AND user_id = $2
	`

	var m Match
	err := sqlx.GetContext(ctx, r.db, &m, query, activityID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) Save(ctx context.Context, m *Match) error {
	query := `
		INSERT INTO matches (id, activity_id, user_id, position, gender, competitive, organisation, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return sqlx.GetContext(ctx, r.db, &m.CreatedAt, query,
		m.ID, m.ActivityID, m.UserID, m.Position, m.Gender, m.Competitive, m.Organisation, m.Availability)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM matches WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrMatchNotFound
	}

	return nil
}

func (r *repository) DeleteAllForActivity(ctx context.Context, activityID string) error {
	query := `DELETE FROM matches WHERE activity_id = $1`

	_, err := r.db.ExecContext(ctx, query, activityID)
	return err
}

func (r *repository) ListByActivity(ctx context.Context, activityID string) ([]Match, error) {
	query := `
		SELECT id, activity_id, user_id, position, gender, competitive, organisation, availability, created_at
		FROM matches
		WHERE activity_id = $1
		ORDER BY created_at
	`

	var matches []Match
	err := sqlx.SelectContext(ctx, r.db, &matches, query, activityID)
	if err != nil {
		return nil, err
	}

	return matches, nil
}
