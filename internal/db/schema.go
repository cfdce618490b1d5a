package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// Migrate creates the schema, the PostGIS extension and every table, then
// adds the site geometry column and its spatial index.
func Migrate(ctx context.Context, d *gorm.DB) error {
	d = d.WithContext(ctx)

	if err := d.Exec(`CREATE EXTENSION IF NOT EXISTS postgis`).Error; err != nil {
		return fmt.Errorf("enable postgis: %w", err)
	}
	if err := EnsureSchema(d, Schema); err != nil {
		return fmt.Errorf("create %s schema: %w", Schema, err)
	}
	if err := d.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate %s tables: %w", Schema, err)
	}

	stmts := []string{
		`ALTER TABLE ` + TableSites + ` ADD COLUMN IF NOT EXISTS geometry geometry(Geometry, 4326)`,
		`CREATE INDEX IF NOT EXISTS idx_sites_geometry ON ` + TableSites + ` USING GIST (geometry)`,
	}
	for _, s := range stmts {
		if err := d.Exec(s).Error; err != nil {
			return fmt.Errorf("migrate site geometry: %w", err)
		}
	}
	return nil
}
