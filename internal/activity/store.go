package activity

import (
	"context"
	"fmt"

	"rowmatch/internal/match"
	"rowmatch/internal/user"

	"github.com/jmoiron/sqlx"
)

// Repos are the repositories bound to one transaction.
// Lookups made while the activity row is locked go through Users so they reuse the transaction's connection.
type Repos struct {
	Activities Repository
	Matches    match.Repository
	Users      UserDirectory
}

// UnitOfWork runs fn inside a single transaction. The transaction commits only when fn returns nil.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repos) error) error
}

type txUnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) UnitOfWork {
	return &txUnitOfWork{db: db}
}

func (u *txUnitOfWork) Do(ctx context.Context, fn func(r Repos) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(Repos{
		Activities: NewRepository(tx),
		Matches:    match.NewRepository(tx),
		Users:      user.NewRepository(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
