package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/aethra/acueducto/internal/config"
	"github.com/aethra/acueducto/internal/logging"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// DSN builds the driver-specific connection string for cfg
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres, "":
		if cfg.URL != "" {
			if strings.HasPrefix(cfg.URL, "postgres://") || strings.HasPrefix(cfg.URL, "postgresql://") {
				dsn, err := pq.ParseURL(cfg.URL)
				if err != nil {
					return "", fmt.Errorf("invalid postgres url: %w", err)
				}
				return dsn, nil
			}
			return cfg.URL, nil
		}
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode), nil

	case DriverMySQL:
		if cfg.URL != "" {
			return cfg.URL, nil
		}
		port := cfg.Port
		if port == 0 || port == 5432 {
			port = 3306
		}
		mc := mysql.Config{
			User:                 cfg.User,
			Passwd:               cfg.Password,
			Net:                  "tcp",
			Addr:                 fmt.Sprintf("%s:%d", cfg.Host, port),
			DBName:               cfg.Name,
			AllowNativePasswords: true,
			// RowsAffected must count matched rows for update misses to be detected
			ClientFoundRows: true,
			ParseTime:       true,
			Loc:             time.UTC,
			Params:          map[string]string{"charset": "utf8mb4"},
		}
		return mc.FormatDSN(), nil

	case DriverSQLite:
		if cfg.URL != "" {
			return cfg.URL, nil
		}
		if cfg.Name != "" {
			return cfg.Name, nil
		}
		return "acueducto.db", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Open connects with the configured driver. Duplicate key errors are
// translated to gorm.ErrDuplicatedKey.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case DriverMySQL:
		dialector = gormmysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// gormLogLevel follows the application log level; SQL is only printed at trace
func gormLogLevel() gormlogger.LogLevel {
	log := logging.Get()
	switch {
	case log.IsLevelEnabled(logrus.TraceLevel):
		return gormlogger.Info
	case log.IsLevelEnabled(logrus.DebugLevel):
		return gormlogger.Warn
	}
	return gormlogger.Silent
}
