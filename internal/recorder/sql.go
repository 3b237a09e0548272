package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	"InflationTracker/internal/model"
)

// sqlRecorder holds the queries shared by the SQLite and Postgres recorders.
type sqlRecorder struct {
	db   *sql.DB
	mu   sync.Mutex
	name string
	// dollar switches "?" placeholders to "$n".
	dollar bool
}

const insertSnapshot = `INSERT INTO snapshots
	(taken_at,
	 cpi_date, cpi, cpi_change,
	 inflation_date, inflation, inflation_change,
	 m2_growth_date, m2_growth, m2_growth_change,
	 fed_rate_date, fed_rate, fed_rate_change,
	 purchasing_power, correlation, correlation_tier)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

const selectSnapshots = `SELECT taken_at,
	 cpi_date, cpi, cpi_change,
	 inflation_date, inflation, inflation_change,
	 m2_growth_date, m2_growth, m2_growth_change,
	 fed_rate_date, fed_rate, fed_rate_change,
	 purchasing_power, correlation, correlation_tier
	FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT ?`

func (r *sqlRecorder) bind(q string) string {
	if !r.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *sqlRecorder) RecordSnapshot(ctx context.Context, snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	args := []any{snap.TakenAt.Unix()}
	for _, h := range []model.Headline{snap.CPI, snap.Inflation, snap.M2Growth, snap.FedRate} {
		args = append(args, h.Date.Unix(), h.Value, null.FloatFromPtr(h.Change))
	}
	args = append(args, snap.PurchasingPower, snap.Correlation, snap.CorrelationTier)

	if _, err := r.db.ExecContext(ctx, r.bind(insertSnapshot), args...); err != nil {
		return fmt.Errorf("%s: insert snapshot: %w", r.name, err)
	}
	return nil
}

func (r *sqlRecorder) RecentSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, r.bind(selectSnapshots), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: query snapshots: %w", r.name, err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var (
			s       model.Snapshot
			takenAt int64
			dates   [4]int64
			changes [4]null.Float
		)
		heads := []*model.Headline{&s.CPI, &s.Inflation, &s.M2Growth, &s.FedRate}
		dest := []any{&takenAt}
		for i, h := range heads {
			dest = append(dest, &dates[i], &h.Value, &changes[i])
		}
		dest = append(dest, &s.PurchasingPower, &s.Correlation, &s.CorrelationTier)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: scan snapshot: %w", r.name, err)
		}
		s.TakenAt = time.Unix(takenAt, 0).UTC()
		for i, h := range heads {
			h.Date = time.Unix(dates[i], 0).UTC()
			h.Change = changes[i].Ptr()
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sqlRecorder) Close() error {
	log.Printf("[INFO] closing %s recorder", r.name)
	return r.db.Close()
}
