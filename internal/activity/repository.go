package activity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rowmatch/internal/rowing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const activityColumns = `id, owner, name, location, boat_type, kind, start_time, positions, applicants,
		required_gender, required_organisation, requires_competitive, created_at`

type activityRow struct {
	ID                   string           `db:"id"`
	Owner                string           `db:"owner"`
	Name                 string           `db:"name"`
	Location             string           `db:"location"`
	BoatType             string           `db:"boat_type"`
	Kind                 string           `db:"kind"`
	StartTime            time.Time        `db:"start_time"`
	Positions            rowing.Positions `db:"positions"`
	Applicants           pq.StringArray   `db:"applicants"`
	RequiredGender       sql.NullString   `db:"required_gender"`
	RequiredOrganisation sql.NullString   `db:"required_organisation"`
	RequiresCompetitive  sql.NullBool     `db:"requires_competitive"`
	CreatedAt            time.Time        `db:"created_at"`
}

func (r activityRow) toActivity() Activity {
	a := Activity{
		ID:         r.ID,
		Owner:      r.Owner,
		Name:       r.Name,
		Location:   r.Location,
		BoatType:   r.BoatType,
		Kind:       Kind(r.Kind),
		Start:      r.StartTime,
		Positions:  r.Positions,
		Applicants: []string(r.Applicants),
		CreatedAt:  r.CreatedAt,
	}
	if a.Kind == KindCompetition {
		a.Competition = &Competition{
			Gender:              rowing.Gender(r.RequiredGender.String),
			Organisation:        r.RequiredOrganisation.String,
			RequiresCompetitive: r.RequiresCompetitive.Bool,
		}
	}
	return a
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type repository struct {
	db sqlx.ExtContext
}

// NewRepository accepts either a *sqlx.DB or a *sqlx.Tx.
func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

func (r *repository) get(ctx context.Context, query string, id string) (*Activity, error) {
	var row activityRow
	err := sqlx.GetContext(ctx, r.db, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	a := row.toActivity()
	return &a, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = $1
	`
	return r.get(ctx, query, id)
}

func (r *repository) LockByID(ctx context.Context, id string) (*Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = $1
		FOR UPDATE
	`
	return r.get(ctx, query, id)
}

func (r *repository) FindAll(ctx context.Context) ([]Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		ORDER BY start_time
	`

	var rows []activityRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, row.toActivity())
	}
	return activities, nil
}

// Save inserts the activity or overwrites its mutable fields.
func (r *repository) Save(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO activities (id, owner, name, location, boat_type, kind, start_time, positions, applicants,
			required_gender, required_organisation, requires_competitive)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			boat_type = EXCLUDED.boat_type,
			start_time = EXCLUDED.start_time,
			positions = EXCLUDED.positions,
			applicants = EXCLUDED.applicants,
			required_gender = EXCLUDED.required_gender,
			required_organisation = EXCLUDED.required_organisation,
			requires_competitive = EXCLUDED.requires_competitive
		RETURNING created_at
	`

	var (
		gender       sql.NullString
		organisation sql.NullString
		competitive  sql.NullBool
	)
	if a.Competition != nil {
		gender = nullString(string(a.Competition.Gender))
		organisation = nullString(a.Competition.Organisation)
		competitive = sql.NullBool{Bool: a.Competition.RequiresCompetitive, Valid: true}
	}

	applicants := pq.StringArray(a.Applicants)
	if applicants == nil {
		applicants = pq.StringArray{}
	}

	return sqlx.GetContext(ctx, r.db, &a.CreatedAt, query,
		a.ID, a.Owner, a.Name, a.Location, a.BoatType, string(a.Kind), a.Start,
		a.Positions, applicants, gender, organisation, competitive)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM activities WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrActivityNotFound
	}

	return nil
}
