package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRestaurantRepo(t *testing.T) (RestaurantRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRestaurantRepository(db), mock
}

func TestGetRestaurantByID(t *testing.T) {
	repo, mock := newMockRestaurantRepo(t)
	created := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, created_at FROM restaurants WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow(int64(1), "Cantina Centro", created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM restaurants WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetRestaurantByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Cantina Centro", got.Name)

	_, err = repo.GetRestaurantByID(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRestaurantsForEmail_NormalizesEmail(t *testing.T) {
	repo, mock := newMockRestaurantRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM restaurant_access ra")).
		WithArgs("owner@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(int64(2), "Bistro", now).
			AddRow(int64(1), "Cantina", now))

	got, err := repo.ListRestaurantsForEmail(context.Background(), "  Owner@Example.com ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bistro", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasAccess(t *testing.T) {
	repo, mock := newMockRestaurantRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("restaurant_id IS NULL OR restaurant_id = $2")).
		WithArgs("viewer@example.com", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasAccess(context.Background(), "viewer@example.com", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
