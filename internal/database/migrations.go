// Package database opens the sql backend and keeps its schema current
package database

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/aethra/acueducto/internal/logging"
	"github.com/aethra/acueducto/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationRecord tracks which migrations have been applied
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for migrations
func (MigrationRecord) TableName() string {
	return "_acueducto_migrations"
}

// Migrate brings the schema up to date. Postgres runs the embedded SQL files,
// which carry the checks and foreign keys of the hosted schema; other dialects
// use AutoMigrate on the entity models.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == DriverPostgres {
		return RunMigrations(db)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate entities: %w", err)
	}
	logging.Get().WithField("dialect", db.Dialector.Name()).Info("database: schema auto-migrated")
	return nil
}

// MigrationFiles lists the embedded migrations in apply order
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// RunMigrations executes all pending SQL migrations
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := MigrationFiles()
	if err != nil {
		return err
	}

	log := logging.Get()
	for _, file := range files {
		var count int64
		if err := db.Model(&MigrationRecord{}).Where("name = ?", file).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration %s: %w", file, err)
		}
		if count > 0 {
			log.WithField("migration", file).Debug("database: migration already applied")
			continue
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		// statement and record commit together
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", file, err)
			}
			if err := tx.Create(&MigrationRecord{Name: file}).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{"migration": file}).Info("database: migration applied")
	}

	return nil
}
