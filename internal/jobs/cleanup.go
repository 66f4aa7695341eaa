package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"ControlCajaSaas/api/caja"
	"ControlCajaSaas/internal/config"
	"ControlCajaSaas/internal/logger"
)

type CleanupConfig struct {
	Schedule              string
	TimeZone              string
	StagingRetentionHours int
}

func NewDefaultCleanupConfig() *CleanupConfig {
	return &CleanupConfig{
		Schedule:              config.DefaultCleanupSchedule,
		TimeZone:              config.DefaultTimeZone,
		StagingRetentionHours: config.ExportRetentionHours,
	}
}

// RunCleanupScheduler drops expired filter sessions and purges stale rows
// from the upload staging table on the configured schedule.
func RunCleanupScheduler(cfg *CleanupConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultCleanupSchedule
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}
	if cfg.StagingRetentionHours == 0 {
		cfg.StagingRetentionHours = config.ExportRetentionHours
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone for cleanup scheduler: %v", err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		runCleanup(cfg, db)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %v", err)
	}
	c.Start()
	return nil
}

func runCleanup(cfg *CleanupConfig, db *pgxpool.Pool) {
	if filters := caja.GlobalFilterStore(); filters != nil {
		if dropped := filters.CleanupExpired(); dropped > 0 {
			log.Printf("cleanup: dropped %d expired filter sessions", dropped)
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Cleanup dropped %d expired filter sessions", dropped))
			}
		}
	}

	if db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cutoff := time.Now().Add(-time.Duration(cfg.StagingRetentionHours) * time.Hour)
	tag, err := db.Exec(ctx, `DELETE FROM caja_cargas_staging WHERE cargado_en < $1`, cutoff)
	if err != nil {
		log.Printf("cleanup: failed to purge staging rows: %v", err)
		return
	}
	if tag.RowsAffected() > 0 {
		log.Printf("cleanup: purged %d staged upload rows", tag.RowsAffected())
	}
}
