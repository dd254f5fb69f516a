package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carmarket/internal/config"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.Config{DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "cars"})
	assert.True(t, strings.HasPrefix(dsn, "app:pw@tcp(db:3306)/cars?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.Config{DBUser: "app", DBHost: "db", DBPort: "5432", DBName: "cars"})
	assert.Equal(t, "host=db port=5432 user=app dbname=cars sslmode=disable TimeZone=UTC", dsn)
	assert.NotContains(t, dsn, "password")
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := config.Config{DBDriver: "sqlite", DBName: filepath.Join(t.TempDir(), "cars.db")}
	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "refresh_tokens", "cars", "deal_requests"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
