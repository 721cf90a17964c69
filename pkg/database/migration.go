package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool {
	return false
}

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Debugf(strings.TrimSpace(format), v...)
}

type MigrationService struct {
	config *MigrationConfig
	logger ectologger.Logger
}

type MigrationConfig struct {
	// MigrationFolderPath overrides the embedded migrations when set.
	MigrationFolderPath string
	// Embedded holds the migrations compiled into the binary.
	Embedded     fs.FS
	EmbeddedPath string
	Version      uint
	Force        int
	AutoRollback bool // If enabled, will attempt to rollback the database to the previous version if an error occurs
}

func NewMigrationService(logger ectologger.Logger, config *MigrationConfig) *MigrationService {
	return &MigrationService{
		config: config,
		logger: logger,
	}
}

func (ms *MigrationService) resolveMigrationFolder() string {
	migrationFolder := ms.config.MigrationFolderPath
	if _, err := os.Stat(migrationFolder); err == nil {
		return migrationFolder
	}
	workingDirectory, _ := os.Getwd()
	separator := ""
	if workingDirectory != "/" {
		separator = "/"
	}
	return workingDirectory + separator + migrationFolder
}

// Migrate brings the schema of db up to the configured version.
func (ms *MigrationService) Migrate(db DB) error {
	instance, ok := db.(*DatabaseInstance)
	if !ok {
		return NewStorageError("migrate", fmt.Errorf("unsupported database implementation %T", db))
	}

	driver, err := migratesqlite.WithInstance(instance.DB.DB, &migratesqlite.Config{})
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migration driver")
		return NewStorageError("migrate", err)
	}

	m, err := ms.newMigrate(driver)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return NewStorageError("migrate", err)
	}

	m.Log = MigrationLogger{Logger: ms.logger}

	if err := ms.runMigration(m); err != nil {
		return NewStorageError("migrate", err)
	}
	return nil
}

func (ms *MigrationService) newMigrate(driver migratedb.Driver) (*migrate.Migrate, error) {
	if ms.config.MigrationFolderPath != "" {
		migrationFolder := ms.resolveMigrationFolder()
		if _, err := os.Stat(migrationFolder); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("migration folder %s does not exist", migrationFolder))
		}
		return migrate.NewWithDatabaseInstance("file://"+migrationFolder, "sqlite3", driver)
	}

	source, err := iofs.New(ms.config.Embedded, ms.config.EmbeddedPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded migrations")
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

func (ms *MigrationService) runMigration(m *migrate.Migrate) error {
	if ms.config.Force != 0 {
		// Force the database to a specific version
		err := m.Force(ms.config.Force)
		if err != nil {
			ms.logger.WithError(err).Errorf("Failed to force database to version %d", ms.config.Force)
			return err
		}
	}

	version, _, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
	}

	startTime := time.Now()

	var migrationErr error
	if ms.config.Version != 0 {
		migrationErr = m.Migrate(ms.config.Version)
	} else {
		migrationErr = m.Up()
	}

	ms.logger.Debugf("Database migrations completed in %v", time.Since(startTime))

	return ms.handleMigrationError(m, migrationErr, version)
}

func (ms *MigrationService) handleMigrationError(m *migrate.Migrate, err error, previousVersion uint) error {
	if err == nil {
		ms.logger.Info("Successfully applied migrations")
		return nil
	}

	if err == migrate.ErrNoChange {
		ms.logger.Debug("No new migrations to apply")
		return nil
	}

	// usually a rollback to a binary that ships fewer migrations
	if strings.Contains(err.Error(), "no migration found for version") && ms.config.MigrationFolderPath != "" {
		latest, latestErr := getLatestVersion(ms.resolveMigrationFolder())
		if latestErr != nil {
			ms.logger.WithError(latestErr).Error("Failed to get latest migration version")
			return err
		}
		ms.logger.Warnf("No migration found for version %d. Forcing database to version %d", previousVersion, latest)
		if forceErr := m.Force(latest); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", latest)
			return forceErr
		}
		return nil
	}

	ms.logger.WithError(err).Errorf("Migration failed with error: %v", err)

	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
	} else if ms.config.AutoRollback && dirty {
		if previousVersion == 0 && version > 0 {
			previousVersion = version - 1
		}
		ms.logger.Warnf("Rolling back database to version %d", previousVersion)
		target := int(previousVersion)
		if target == 0 {
			target = migratedb.NilVersion
		}
		if forceErr := m.Force(target); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", previousVersion)
			return forceErr
		}
	}

	return err
}

func getLatestVersion(folderPath string) (int, error) {
	files, err := os.ReadDir(folderPath)
	if err != nil {
		return 0, err
	}

	var versions []int
	re := regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

	for _, file := range files {
		if !file.IsDir() {
			matches := re.FindStringSubmatch(file.Name())
			if len(matches) > 1 {
				version, err := strconv.Atoi(matches[1])
				if err != nil {
					return 0, err
				}
				versions = append(versions, version)
			}
		}
	}

	if len(versions) == 0 {
		return 0, fmt.Errorf("no migration files found")
	}

	sort.Ints(versions)
	return versions[len(versions)-1], nil
}

// RequiredTables are the tables every command except create-db expects.
var RequiredTables = []string{"contributions", "cure_list_voters"}

// ValidateSchema reports a StorageError when any required table is missing.
func ValidateSchema(ctx context.Context, db DB) error {
	sb := NewSelectBuilder()
	sb.Select("name")
	sb.From("sqlite_master")
	sb.Where(sb.Equal("type", "table"), sb.In("name", toAny(RequiredTables)...))

	query, args := sb.Build()
	var found []string
	if err := db.SelectContext(ctx, &found, query, args...); err != nil {
		return NewStorageError("validate schema", err)
	}

	present := make(map[string]bool, len(found))
	for _, name := range found {
		present[name] = true
	}
	var missing []string
	for _, name := range RequiredTables {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return PreconditionError("validate schema", fmt.Errorf("missing tables %s in %s, run create-db first", strings.Join(missing, ", "), db.Path()))
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
