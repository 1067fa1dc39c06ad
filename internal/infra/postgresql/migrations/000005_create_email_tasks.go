package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"gorm.io/gorm"
)

func createEmailTasksTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_create_email_tasks",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.EmailTaskModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_email_tasks_retry ON email_tasks (next_retry_at) WHERE status IN ('PENDING', 'QUEUED')`,
				`CREATE INDEX IF NOT EXISTS idx_email_tasks_status_created ON email_tasks (status, created_at)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.EmailTaskModel{})
		},
	}
}
