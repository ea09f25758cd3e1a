package mysql

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"storefront/migrations"
)

const migrationsTable = "storefront_schema_migrations"

// Migrate applies every pending embedded SQL migration.
func Migrate(dsn string, log logrus.FieldLogger) error {
	return run(dsn, log, func(m *migrate.Migrate) error { return m.Up() })
}

// Rollback reverts the last steps migrations.
func Rollback(dsn string, steps int, log logrus.FieldLogger) error {
	if steps <= 0 {
		return errors.New("rollback needs a positive step count")
	}
	return run(dsn, log, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

func run(dsn string, log logrus.FieldLogger, fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "mysql://"+dsn+"&x-migrations-table="+migrationsTable)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	err = fn(m)
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("Schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Schema migrated")
	return nil
}
