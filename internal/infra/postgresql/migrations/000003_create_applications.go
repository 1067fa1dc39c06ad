package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"gorm.io/gorm"
)

func createApplicationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_applications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ApplicationModel{}); err != nil {
				return err
			}
			indexes := []string{
				// One application per candidate per job; duplicate submissions
				// surface as a unique violation.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_candidate_job ON applications (candidate_id, job_id)`,
				`CREATE INDEX IF NOT EXISTS idx_applications_job_stage ON applications (job_id, stage)`,
				`CREATE INDEX IF NOT EXISTS idx_applications_candidate_created ON applications (candidate_id, created_at)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ApplicationModel{})
		},
	}
}
