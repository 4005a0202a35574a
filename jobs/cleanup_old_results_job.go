package jobs

import (
	"context"
	"docdiff/config"
	"docdiff/db/pgw"
	"docdiff/models"
	"docdiff/oops"
	"time"
)

const CleanupOldResultsJobName = "CleanupOldResultsJob"

func init() {
	registerJobNameFunc(
		CleanupOldResultsJobName,
		func(ctx context.Context, id JobId, conn *pgw.Conn, args []string) error {
			if len(args) != 0 {
				return oops.Newf("Expected 0 args, got %d: %v", len(args), args)
			}

			return CleanupOldResultsJob_Perform(ctx, conn)
		},
	)
}

// CleanupOldResultsJob_Perform deletes stored results past the retention window.
// When an archive bucket is configured the archive job owns expiration instead,
// so this one only reschedules itself.
func CleanupOldResultsJob_Perform(ctx context.Context, conn *pgw.Conn) error {
	logger := conn.Logger()
	utcNow := time.Now().UTC()

	if config.Cfg.ArchiveBucket == "" {
		cutoff := utcNow.Add(-time.Duration(config.Cfg.ResultRetentionDays) * 24 * time.Hour)
		deleted, err := models.DiffResult_DeleteCreatedBefore(conn, cutoff)
		if err != nil {
			return err
		}
		logger.Info().Msgf("Deleted %d expired diff results", deleted)
	}

	tomorrow := utcNow.Add(24 * time.Hour)
	runAt := time.Date(
		tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC,
	)
	return PerformAt(conn, runAt, CleanupOldResultsJobName)
}
