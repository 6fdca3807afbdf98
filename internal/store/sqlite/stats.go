package sqlite

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/canireach/canireach/internal/domain"
)

// ServiceStats aggregates the check log by service over rows created at
// or after the cutoff, worst connectivity first. Services with no rows
// in the window are absent; the query layer backfills them from the
// registry.
func (s *Store) ServiceStats(ctx context.Context, since time.Time) ([]domain.ServiceStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service_name, COUNT(*), SUM(is_blocked), MAX(created_at)
		FROM checks
		WHERE created_at >= ?
		GROUP BY service_name
	`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query service stats: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []domain.ServiceStat
	for rows.Next() {
		var stat domain.ServiceStat
		var lastChecked string
		if err := rows.Scan(&stat.ServiceName, &stat.TotalChecks, &stat.BlockedCount, &lastChecked); err != nil {
			return nil, fmt.Errorf("failed to scan service stat: %w", err)
		}
		if t, err := parseTime(lastChecked); err == nil {
			stat.LastChecked = t
		}
		stat.BlockedPct = domain.BlockedPct(stat.TotalChecks, stat.BlockedCount)
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read service stats: %w", err)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].BlockedPct != stats[j].BlockedPct {
			return stats[i].BlockedPct > stats[j].BlockedPct
		}
		return stats[i].ServiceName < stats[j].ServiceName
	})
	return stats, nil
}

// IspServiceStats aggregates by (service, ISP), optionally filtered by
// a case-insensitive substring match on the ISP name. Ordering matches
// ServiceStats.
func (s *Store) IspServiceStats(ctx context.Context, since time.Time, ispFilter string) ([]domain.IspServiceStat, error) {
	query := `
		SELECT service_name, isp, COUNT(*), SUM(is_blocked), MAX(created_at)
		FROM checks
		WHERE created_at >= ?
	`
	args := []any{formatTime(since)}
	if ispFilter != "" {
		query += ` AND lower(isp) LIKE '%' || lower(?) || '%'`
		args = append(args, ispFilter)
	}
	query += ` GROUP BY service_name, isp`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query isp stats: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []domain.IspServiceStat
	for rows.Next() {
		var stat domain.IspServiceStat
		var lastChecked string
		if err := rows.Scan(&stat.ServiceName, &stat.ISP, &stat.TotalChecks, &stat.BlockedCount, &lastChecked); err != nil {
			return nil, fmt.Errorf("failed to scan isp stat: %w", err)
		}
		if t, err := parseTime(lastChecked); err == nil {
			stat.LastChecked = t
		}
		stat.BlockedPct = domain.BlockedPct(stat.TotalChecks, stat.BlockedCount)
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read isp stats: %w", err)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].BlockedPct != stats[j].BlockedPct {
			return stats[i].BlockedPct > stats[j].BlockedPct
		}
		if stats[i].ServiceName != stats[j].ServiceName {
			return stats[i].ServiceName < stats[j].ServiceName
		}
		return stats[i].ISP < stats[j].ISP
	})
	return stats, nil
}
