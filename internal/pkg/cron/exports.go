package cron

import (
	"context"
	"log/slog"
	"time"
)

// ExportPurger is the part of the file service the purge job needs.
type ExportPurger interface {
	PurgeExports(ctx context.Context, cutoff time.Time) (int, error)
}

// PurgeExportsJob deletes generated exports older than retention.
func PurgeExportsJob(purger ExportPurger, retention time.Duration, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		removed, err := purger.PurgeExports(ctx, now().Add(-retention))
		if err != nil {
			return err
		}
		if removed > 0 {
			slog.Info("Purged expired exports", "count", removed, "retention", retention)
		}
		return nil
	}
}
