package db

import (
	"fmt"

	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresDbConnect connects to the database according to the passed in parameters
func PostgresDbConnect(host string, port string, database string, user string, password string, level string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable", host, port, database, user, password)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(gormLogLevel(level))})
}

// SqliteDbConnect opens a sqlite file. ":memory:" gives a throwaway database.
func SqliteDbConnect(path string, level string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(gormLogLevel(level))})
}

// Connect picks sqlite when configured, postgres otherwise, and migrates the models.
func Connect(dbConf config.Database) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if dbConf.Sqlite != "" {
		db, err = SqliteDbConnect(dbConf.Sqlite, dbConf.LogLevel)
	} else {
		db, err = PostgresDbConnect(dbConf.Host, dbConf.Port, dbConf.Database, dbConf.User, dbConf.Password, dbConf.LogLevel)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to the database: %w", err)
	}

	if err := MigrateModels(db); err != nil {
		return nil, fmt.Errorf("migrating the database: %w", err)
	}
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

// MigrateModels runs the gorm automigrations with all the db models. This will migrate as needed and do nothing if nothing has changed.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&Address{},
		&ExportRun{},
		&ExportBranch{},
		&Token{},
	)
}
