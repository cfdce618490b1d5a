package wrimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openwaterdata/waterrights/internal/config"
	"github.com/openwaterdata/waterrights/internal/db"
)

// Config drives one import run.
type Config struct {
	CSVPath   string
	Namespace string
	Wipe      bool
	Migrate   bool
	Database  config.DatabaseConfig
}

// Run parses the CSV, then replaces the waterrights tables with its
// contents in one transaction.
func Run(ctx context.Context, cfg Config, log *zap.Logger) error {
	if !cfg.Wipe {
		return errors.New("refusing to run: set Wipe=true (this importer truncates waterrights tables)")
	}

	ns := DefaultNamespace
	if cfg.Namespace != "" {
		var err error
		if ns, err = uuid.Parse(cfg.Namespace); err != nil {
			return fmt.Errorf("invalid namespace uuid: %w", err)
		}
	}

	records, err := ParseFile(cfg.CSVPath, ns)
	if err != nil {
		return fmt.Errorf("parse %s: %w", cfg.CSVPath, err)
	}
	log.Info("parsed csv", zap.String("path", cfg.CSVPath), zap.Int("records", len(records)))

	gdb, err := db.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()

	if cfg.Migrate {
		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
	}

	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := Wipe(tx); err != nil {
			return fmt.Errorf("wipe: %w", err)
		}
		return Load(tx, records)
	})
	if err != nil {
		return err
	}

	log.Info("import complete", zap.Int("records", len(records)))
	return nil
}
