package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"gorm.io/gorm"
)

func createApplicationHistoryTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_application_history",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ApplicationHistoryModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_application_history_application_id ON application_history (application_id, created_at)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ApplicationHistoryModel{})
		},
	}
}
