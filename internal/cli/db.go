package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// connectDB connects to the database based on the URL
func connectDB(databaseURL string, level slog.Level) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormLogger(level)}

	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return gorm.Open(postgres.Open(databaseURL), gormCfg)
	}

	if path, ok := strings.CutPrefix(databaseURL, "sqlite://"); ok {
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; one connection also keeps :memory: a single database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	return nil, fmt.Errorf("unsupported database URL: %s", databaseURL)
}

func gormLogger(level slog.Level) logger.Interface {
	switch {
	case level <= slog.LevelDebug:
		return logger.Default.LogMode(logger.Info)
	case level <= slog.LevelWarn:
		return logger.Default.LogMode(logger.Warn)
	default:
		return logger.Default.LogMode(logger.Silent)
	}
}
