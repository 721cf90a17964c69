// Package testutil holds helpers shared by package tests that need a
// migrated SQLite database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/require"

	"github.com/sbosshardt/cure-contributors/db"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
	"github.com/sbosshardt/cure-contributors/pkg/normalizers"
)

func Logger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// RegisterNormalizers exposes the default normalizers as SQL functions.
func RegisterNormalizers() {
	logger := Logger()
	for _, n := range []normalizers.Normalizer{
		normalizers.NewNameNormalizer(lexicon.Default()),
		normalizers.NewAddressNormalizer(),
		normalizers.ZipNormalizer{},
	} {
		database.RegisterFunction(normalizers.SQLFunctionName(n), normalizers.NewLenient(n, logger).Normalize)
	}
}

// MigrationConfig points at the embedded migrations.
func MigrationConfig() *database.MigrationConfig {
	return &database.MigrationConfig{
		Embedded:     db.Migrations,
		EmbeddedPath: db.MigrationsPath,
	}
}

// NewDB creates a migrated database in a temporary directory. It is closed
// when the test ends.
func NewDB(t *testing.T) database.DB {
	t.Helper()
	RegisterNormalizers()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := database.Open(context.Background(), path, database.Options{Create: true}, Logger())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, database.NewMigrationService(Logger(), MigrationConfig()).Migrate(conn))
	return conn
}
