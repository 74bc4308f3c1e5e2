package jobs

import (
	"context"
	"database/sql"

	"blackrent-backend/internal/logger"
)

// AdvanceRentalStatuses starts confirmed rentals whose start has passed and
// finishes active fixed-term rentals whose end has passed
func (jr *JobRunner) AdvanceRentalStatuses() {
	jr.runWithRecovery("AdvanceRentalStatuses", func() {
		ctx := context.Background()
		now := jr.now()

		started, err := jr.updateRentals(ctx, "start_rentals", `
			UPDATE rentals
			SET status = 'active'
			WHERE status = 'confirmed'
			  AND start_date <= $1
			RETURNING id`, now)
		if err != nil {
			logger.Error("Failed to start confirmed rentals", "error", err)
			return
		}

		finished, err := jr.updateRentals(ctx, "finish_rentals", `
			UPDATE rentals
			SET status = 'finished'
			WHERE status = 'active'
			  AND is_flexible = FALSE
			  AND end_date < $1
			RETURNING id`, now)
		if err != nil {
			logger.Error("Failed to finish active rentals", "error", err)
			return
		}

		if started+finished > 0 {
			jr.invalidateCaches()
		}
		logger.Info("Advanced rental statuses", "started", started, "finished", finished)
	})
}

// PurgeSpamRentals deletes e-mail staged rentals marked as spam once they
// are older than the retention period
func (jr *JobRunner) PurgeSpamRentals() {
	jr.runWithRecovery("PurgeSpamRentals", func() {
		ctx := context.Background()
		cutoff := jr.now().AddDate(0, 0, -jr.config.Scheduler.SpamRetentionDays)

		n, err := jr.updateRentals(ctx, "purge_spam_rentals", `
			DELETE FROM rentals
			WHERE approval_status = 'spam'
			  AND source_type = 'email_auto'
			  AND created_at < $1
			RETURNING id`, cutoff)
		if err != nil {
			logger.Error("Failed to purge spam rentals", "error", err)
			return
		}
		if n > 0 {
			jr.invalidateCaches()
		}
		logger.Info("Purged spam rentals", "count", n, "cutoff", cutoff.Format("2006-01-02"))
	})
}

// updateRentals runs a data-changing statement with a RETURNING id clause
// and returns how many rows it touched
func (jr *JobRunner) updateRentals(ctx context.Context, operation, query string, args ...any) (int, error) {
	logger.DatabaseCall(operation, query)
	rows, err := jr.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(operation, 0, err)
		return 0, err
	}
	ids, err := collectIDs(rows)
	logger.DatabaseResult(operation, int64(len(ids)), err)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		logger.Debug("Rental updated by job", "operation", operation, "rental_id", id)
	}
	return len(ids), nil
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
