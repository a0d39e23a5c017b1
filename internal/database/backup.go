package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupService periodically snapshots the sqlite database into a
// timestamped file and prunes snapshots older than the retention window.
type BackupService struct {
	db            *DB
	storagePath   string
	interval      time.Duration
	retentionDays int
	logger        *zerolog.Logger
}

func NewBackupService(db *DB, storagePath string, interval time.Duration, retentionDays int, logger *zerolog.Logger) *BackupService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &BackupService{
		db:            db,
		storagePath:   storagePath,
		interval:      interval,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("Backup service started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes a consistent snapshot using VACUUM INTO, which is
// safe while the database is open in WAL mode.
func (s *BackupService) PerformBackup(ctx context.Context) error {
	if err := os.MkdirAll(s.storagePath, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.storagePath, fmt.Sprintf("backup_%s.db", timestamp))

	s.logger.Info().Str("path", backupPath).Msg("Performing database backup")

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	s.logger.Info().Msg("Backup completed successfully")
	return nil
}

func (s *BackupService) CleanupOldBackups() {
	if s.retentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.storagePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("Deleting old backup")
			os.Remove(filepath.Join(s.storagePath, file.Name()))
		}
	}
}
