package database

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "analytics", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=analytics sslmode=disable", cfg.DSN())
}

func TestApplySchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	path := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(path, []byte("CREATE TABLE IF NOT EXISTS restaurants (id BIGSERIAL PRIMARY KEY);"), 0o600))

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS restaurants")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, applySchema(db, path))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySchema_SkipsAndFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, applySchema(db, ""))
	assert.Error(t, applySchema(db, filepath.Join(t.TempDir(), "missing.sql")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
