package user

import (
	"context"
	"database/sql"
	"errors"

	"rowmatch/internal/apperr"
	"rowmatch/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrUserNotFound = apperr.New(apperr.KindNotFound, "User not found")

type repository struct {
	db sqlx.ExtContext
}

// NewRepository accepts a *sqlx.DB or a *sqlx.Tx.
func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

func certificates(u *User) pq.StringArray {
	if u.CoxCertificates == nil {
		return pq.StringArray{}
	}
	return u.CoxCertificates
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, positions, availability, cox_certificates,
			gender, organisation, competitive, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	return sqlx.GetContext(ctx, r.db, &u.CreatedAt, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.Positions, u.Availability, certificates(u),
		u.Gender, u.Organisation, u.Competitive, u.Role, u.PasswordHash)
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, first_name, last_name, positions, availability, cox_certificates,
			gender, organisation, competitive, role, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := sqlx.GetContext(ctx, r.db, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) IDExists(ctx context.Context, id string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, positions = $5, availability = $6,
			cox_certificates = $7, gender = $8, organisation = $9, competitive = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.Positions, u.Availability, certificates(u),
		u.Gender, u.Organisation, u.Competitive)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
