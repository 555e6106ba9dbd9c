package database

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cinerate/cinerate/config"
	"github.com/cinerate/cinerate/database/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database described by cfg and migrates every model.
func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch {
	case cfg.IsSQLite():
		if err := cfg.EnsureDirectoryExists(); err != nil {
			return nil, err
		}
		if err := checkSQLiteFile(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.GetDSN())
	case cfg.IsPostgreSQL():
		dialector = postgres.Open(cfg.GetDSN())
	}

	db, err := Open(dialector, debug)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = CloseDB(db)
		return nil, err
	}
	return db, nil
}

// Open connects through dialector without migrating. SQLite connections are
// limited to one so that writers never see "database is locked".
func Open(dialector gorm.Dialector, debug bool) (*gorm.DB, error) {
	var gormLogger logger.Interface
	if debug {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}

	db, err := gorm.Open(dialector, c)
	if err != nil {
		return nil, err
	}
	if !isSQLite(db) {
		return db, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA cache_size = -64000;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA foreign_keys = ON;",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	for _, m := range model.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto migrate %T: %w", m, err)
		}
	}
	return nil
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if isSQLite(db) {
		// Best effort; the connection is closed either way.
		_ = Checkpoint(db)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func IsSQLiteDB(file io.ReaderAt) (bool, error) {
	signature := []byte("SQLite format 3\x00")
	buf := make([]byte, len(signature))
	_, err := file.ReadAt(buf, 0)
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, signature), nil
}

// Checkpoint flushes the SQLite write-ahead log into the main file.
func Checkpoint(db *gorm.DB) error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}

func isSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}

// checkSQLiteFile refuses to open an existing non-empty file that is not an
// SQLite database.
func checkSQLiteFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	ok, err := IsSQLiteDB(f)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not an SQLite database", path)
	}
	return nil
}
