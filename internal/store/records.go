package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/stepr/internal/health"
	"github.com/sadopc/stepr/internal/timeutil"
)

// readPageSize bounds one ReadRecords page. Small enough to exercise the
// pagination path on real day-sized record sets.
const readPageSize = 256

// InsertRecords stores records, ignoring IDs that already exist. Returns the
// number of newly inserted rows.
func (s *Store) InsertRecords(records []health.Record) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO step_records (id, source_id, start_time, end_time, count)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, r := range records {
		if r.ID == "" || r.Count < 0 {
			continue
		}
		res, err := stmt.Exec(
			r.ID, r.SourceID,
			r.StartTime.UTC().Format(time.RFC3339),
			r.EndTime.UTC().Format(time.RFC3339),
			r.Count,
		)
		if err != nil {
			return added, fmt.Errorf("insert record %q: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return added, fmt.Errorf("commit insert: %w", err)
	}
	return added, nil
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM step_records`).Scan(&n)
	return n, err
}

// ReadRecords implements health.Source: one page of records whose start time
// falls inside w, ordered by rowid. The continuation token is the last rowid
// of the page, opaque to callers.
func (s *Store) ReadRecords(ctx context.Context, w timeutil.Window, pageToken string) ([]health.Record, string, error) {
	afterRowid := int64(0)
	if pageToken != "" {
		v, err := strconv.ParseInt(pageToken, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("bad page token %q: %w", pageToken, err)
		}
		afterRowid = v
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rowid, id, source_id, start_time, end_time, count
		 FROM step_records
		 WHERE start_time >= ? AND start_time < ? AND rowid > ?
		 ORDER BY rowid
		 LIMIT ?`,
		w.Start.UTC().Format(time.RFC3339),
		w.End.UTC().Format(time.RFC3339),
		afterRowid,
		readPageSize,
	)
	if err != nil {
		return nil, "", fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	var (
		records   []health.Record
		lastRowid int64
		scanned   int
	)
	for rows.Next() {
		scanned++
		var (
			r          health.Record
			start, end string
		)
		if err := rows.Scan(&lastRowid, &r.ID, &r.SourceID, &start, &end, &r.Count); err != nil {
			return nil, "", err
		}
		var perr error
		if r.StartTime, perr = time.Parse(time.RFC3339, start); perr != nil {
			// Timestamp mangled by whatever wrote the row. A zero time would
			// land the record in the wrong hour bucket, so skip it.
			continue
		}
		if r.EndTime, perr = time.Parse(time.RFC3339, end); perr != nil {
			continue
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if scanned == readPageSize {
		next = strconv.FormatInt(lastRowid, 10)
	}
	return records, next, nil
}

// AggregateTotal implements health.Source: the preferred-source step total
// for w, computed in SQL.
func (s *Store) AggregateTotal(ctx context.Context, w timeutil.Window) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(count), 0)
		 FROM step_records
		 WHERE source_id = ? AND start_time >= ? AND start_time < ?`,
		s.opts.PreferredSource,
		w.Start.UTC().Format(time.RFC3339),
		w.End.UTC().Format(time.RFC3339),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("aggregate total: %w", err)
	}
	return total.Int64, nil
}

// Availability implements health.Source. The database is available when it
// answers a ping; a schema written by a newer bridge reports NeedsUpdate.
func (s *Store) Availability(ctx context.Context) health.Availability {
	a := health.Availability{InstallURI: s.opts.InstallURI}
	if err := s.db.PingContext(ctx); err != nil {
		return a
	}
	a.Available = true

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err == nil && version > currentVersion {
		a.Available = false
		a.NeedsUpdate = true
	}
	return a
}
