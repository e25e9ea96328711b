package database

import (
	"errors"
	"time"

	"github.com/Akhila-Thada/AspireBeauty-Backend/internal/catalog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillVariantCounters = "2026-07-14_backfill_variant_counters"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillVariantCounters, apply: backfillVariantCounters},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Rows imported before the reservation counters existed carry NULL or
// placeholder negative values; normalize them to zero.
func backfillVariantCounters(db *gorm.DB) error {
	if err := db.Model(&catalog.Variant{}).
		Where("pending IS NULL OR pending < 0").
		Update("pending", 0).Error; err != nil {
		return err
	}
	return db.Model(&catalog.Variant{}).
		Where("confirmed IS NULL OR confirmed < 0").
		Update("confirmed", 0).Error
}
