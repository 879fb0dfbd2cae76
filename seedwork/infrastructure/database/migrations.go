package database

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// RunMigrations executes database migrations against db using the SQL
// files under migrationsPath.
func RunMigrations(db *gorm.DB, migrationsPath string) error {
	log.Printf("Running migrations from path: %s", migrationsPath)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	return runMigrateInstance(sqlDB, migrationsPath)
}

func runMigrateInstance(db *sql.DB, migrationsPath string) error {
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceURL := fmt.Sprintf("file://%s", absPath)
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		log.Println("No migrations to run")
	} else {
		log.Println("Migrations completed successfully")
	}

	return nil
}

// CreateMigrationsTable ensures the migrations table exists.
func CreateMigrationsTable(db *gorm.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version bigint NOT NULL,
		dirty boolean NOT NULL,
		PRIMARY KEY (version)
	);`

	return db.Exec(query).Error
}

// GetMigrationVersion returns the current migration version.
func GetMigrationVersion(db *gorm.DB) (int, bool, error) {
	var exists bool
	err := db.Raw(`SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_name = 'schema_migrations'
	)`).Scan(&exists).Error
	if err != nil {
		return 0, false, err
	}
	if !exists {
		return 0, false, nil
	}

	var version int
	var dirty bool
	err = db.Raw(`SELECT version, dirty FROM schema_migrations LIMIT 1`).Row().Scan(&version, &dirty)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}

	return version, dirty, nil
}
