package match

import (
	"context"
	"regexp"
	"testing"
	"time"

	"rowmatch/internal/rowing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var matchColumns = []string{"id", "activity_id", "user_id", "position", "gender", "competitive", "organisation", "availability", "created_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		require.NoError(t, mock.ExpectationsWereMet())
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func TestExistsFor(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS( SELECT 1 FROM matches WHERE activity_id = $1 AND user_id = $2 )")).
		WithArgs("act-1", "Efe").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsFor(context.Background(), "act-1", "Efe")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFind(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	query := regexp.QuoteMeta("SELECT id, activity_id, user_id, position, gender, competitive, organisation, availability, created_at FROM matches WHERE activity_id = $1 AND user_id = $2")

	mock.ExpectQuery(query).
		WithArgs("act-1", "Efe").
		WillReturnRows(sqlmock.NewRows(matchColumns).
			AddRow("m-1", "act-1", "Efe", "COACH", "MALE", true, "TU Delft", []byte(`[{"day":"MONDAY","start":"09:00","end":"10:00"}]`), now))

	m, err := repo.Find(context.Background(), "act-1", "Efe")
	require.NoError(t, err)
	require.Equal(t, "m-1", m.ID)
	require.Equal(t, rowing.PositionCoach, m.Position)
	require.Equal(t, rowing.GenderMale, m.Gender)
	require.Len(t, m.Availability, 1)
	require.Equal(t, time.Monday, m.Availability[0].Day)

	// absent row
	mock.ExpectQuery(query).
		WithArgs("act-1", "Alex").
		WillReturnRows(sqlmock.NewRows(matchColumns))

	_, err = repo.Find(context.Background(), "act-1", "Alex")
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSave(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches (id, activity_id, user_id, position, gender, competitive, organisation, availability) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at")).
		WithArgs("m-1", "act-1", "Efe", "COX", "MALE", true, "TU Delft", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	m := &Match{
		ID:           "m-1",
		ActivityID:   "act-1",
		UserID:       "Efe",
		Position:     rowing.PositionCox,
		Gender:       rowing.GenderMale,
		Competitive:  true,
		Organisation: "TU Delft",
	}
	require.NoError(t, repo.Save(context.Background(), m))
	require.WithinDuration(t, now, m.CreatedAt, time.Second)
}

func TestDelete(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches WHERE id = $1")).
		WithArgs("m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "m-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches WHERE id = $1")).
		WithArgs("m-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), "m-2"), ErrMatchNotFound)
}

func TestDeleteAllForActivityAndList(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches WHERE activity_id = $1")).
		WithArgs("act-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteAllForActivity(context.Background(), "act-1"))

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, activity_id, user_id, position, gender, competitive, organisation, availability, created_at FROM matches WHERE activity_id = $1 ORDER BY created_at")).
		WithArgs("act-2").
		WillReturnRows(sqlmock.NewRows(matchColumns).
			AddRow("m-1", "act-2", "Efe", "COACH", "", false, "", []byte(`[]`), now).
			AddRow("m-2", "act-2", "Alex", "PORT", "", false, "", nil, now))

	list, err := repo.ListByActivity(context.Background(), "act-2")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Alex", list[1].UserID)
	require.Nil(t, list[1].Availability)
}
