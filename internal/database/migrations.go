package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// RunMigrations applies the SQL migrations under ./migrations against
// the given database.
func RunMigrations(databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationsPath, err := migrationsDir()
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// CreateMigration writes an empty up/down migration pair.
func CreateMigration(name string) error {
	migrationsPath, err := migrationsDir()
	if err != nil {
		return err
	}

	version := time.Now().UTC().Format("20060102150405")
	for _, direction := range []string{"up", "down"} {
		filename := filepath.Join(migrationsPath, fmt.Sprintf("%s_%s.%s.sql", version, name, direction))
		if err := os.WriteFile(filename, []byte("-- "+name+" ("+direction+")\n"), 0644); err != nil {
			return fmt.Errorf("failed to write migration file: %w", err)
		}
	}

	return nil
}

func migrationsDir() (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	migrationsPath := filepath.Join(pwd, "migrations")
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(migrationsPath, 0755); err != nil {
			return "", fmt.Errorf("failed to create migrations directory: %w", err)
		}
	}

	return migrationsPath, nil
}
