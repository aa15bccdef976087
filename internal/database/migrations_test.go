package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferialibre/listings-api/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	versions, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, versions, "binaries must carry the schema")
	assert.Contains(t, versions, "001_init.sql")

	sql, err := fs.ReadFile(migrations.FS, "001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS listings")
	assert.Contains(t, string(sql), "moderation_records")
}
