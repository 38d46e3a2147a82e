package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/postservice/config"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"posts.db", "posts.db?_foreign_keys=on"},
		{"file:posts.db?cache=shared", "file:posts.db?cache=shared&_foreign_keys=on"},
		{"posts.db?_foreign_keys=on", "posts.db?_foreign_keys=on"},
		{"posts.db?_fk=1", "posts.db?_fk=1"},
		{"posts.db?_foreign_keys=off", "posts.db?_foreign_keys=off"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SQLiteDSN(tt.in), tt.in)
	}
}

func TestInitDB_SQLiteForeignKeysOnEveryConnection(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "posts.db"),
		MaxOpenConns: 4,
		LogLevel:     "silent",
	}}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		conn, err := sqlDB.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()

		var on int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on, "connection %d", i)
	}
}

func TestSqlx_SharesPool(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "posts.db"),
		LogLevel: "silent",
	}}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	x, err := Sqlx(db)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", x.DriverName())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Same(t, sqlDB, x.DB)
}
