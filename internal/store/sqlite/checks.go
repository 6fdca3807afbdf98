package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/canireach/canireach/internal/domain"
)

// InsertChecks appends one row per result in a single transaction.
// Either the whole batch lands or none of it does; a batch that fails
// here must not be reported to the submitter as success.
func (s *Store) InsertChecks(ctx context.Context, rows []domain.CheckRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("empty check batch")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO checks(ip_hash, isp, city, state, service_name, service_url, is_blocked, response_time_ms, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, row := range rows {
		createdAt := row.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			row.IPHash,
			row.ISP,
			row.City,
			row.State,
			row.ServiceName,
			row.ServiceURL,
			row.IsBlocked,
			row.ResponseTimeMs,
			formatTime(createdAt),
		); err != nil {
			return fmt.Errorf("failed to insert check for %s: %w", row.ServiceName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit check batch: %w", err)
	}
	return nil
}

// CountChecksSince returns the number of check rows created at or after
// the cutoff, regardless of service or ISP.
func (s *Store) CountChecksSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checks WHERE created_at >= ?`,
		formatTime(since),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count checks: %w", err)
	}
	return count, nil
}
