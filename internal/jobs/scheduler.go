package jobs

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"ControlCajaSaas/internal/logger"
	"ControlCajaSaas/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	cleanupConfig := NewDefaultCleanupConfig()
	if s.config != nil {
		if schedule, ok := s.config["cleanup_schedule"].(string); ok && schedule != "" {
			cleanupConfig.Schedule = schedule
		}
		if hours, ok := s.config["staging_retention_hours"].(int); ok && hours > 0 {
			cleanupConfig.StagingRetentionHours = hours
		}
	}

	if err := RunCleanupScheduler(cleanupConfig, s.db); err != nil {
		return fmt.Errorf("failed to start cleanup scheduler: %v", err)
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started with cleanup scheduler")
	}
	log.Println("Cron service started with cleanup scheduler running")
	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
