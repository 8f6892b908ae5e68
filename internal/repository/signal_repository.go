package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	pkgch "IndexPulse/pkg/clickhouse"
	applogger "IndexPulse/pkg/logger"
)

// ClickHouseSignalStore implements SignalStore backed by ClickHouse. Every
// emitted transition is appended to the signal log.
type ClickHouseSignalStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewClickHouseSignalStore(ch *pkgch.Client, table string, l *applogger.Logger) domrepo.SignalStore {
	if table == "" {
		table = "signal_log"
	}
	return &ClickHouseSignalStore{db: ch.DB(), table: table, l: l}
}

func (s *ClickHouseSignalStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ts DateTime64(3),
            instrument LowCardinality(String),
            thesis LowCardinality(String),
            dominant LowCardinality(String),
            conviction Int32,
            choppy UInt8,
            playbook LowCardinality(String),
            signal LowCardinality(String),
            bullish_drivers Array(String),
            bearish_drivers Array(String),
            narrative String
        ) ENGINE = MergeTree()
        ORDER BY (instrument, ts)
        TTL toDateTime(ts) + INTERVAL 90 DAY
    `, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init signal log: %w", err)
	}
	return nil
}

func (s *ClickHouseSignalStore) Insert(ctx context.Context, c *models.Classification) error {
	start := time.Now()
	q := fmt.Sprintf(`
        INSERT INTO %s
            (ts, instrument, thesis, dominant, conviction, choppy, playbook, signal, bullish_drivers, bearish_drivers, narrative)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, s.table)

	choppy := uint8(0)
	if c.Choppy {
		choppy = 1
	}
	_, err := s.db.ExecContext(ctx, q,
		c.Timestamp,
		c.Instrument,
		string(c.Thesis),
		string(c.Dominant),
		int32(c.Conviction),
		choppy,
		c.Playbook,
		string(c.Signal),
		c.BullishDrivers,
		c.BearishDrivers,
		c.Narrative,
	)
	if err != nil {
		s.l.Error("clickhouse insert signal error",
			applogger.String("instrument", c.Instrument),
			applogger.Error(err),
		)
		return fmt.Errorf("insert signal: %w", err)
	}
	s.l.Debug("clickhouse insert signal ok",
		applogger.String("instrument", c.Instrument),
		applogger.String("signal", string(c.Signal)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *ClickHouseSignalStore) Query(ctx context.Context, instrument string, from, to time.Time, limit int) ([]*models.Classification, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf(`
        SELECT ts, instrument, thesis, dominant, conviction, choppy, playbook, signal, bullish_drivers, bearish_drivers, narrative
        FROM %s
        WHERE instrument = ? AND ts >= ? AND ts <= ?
        ORDER BY ts DESC
        LIMIT ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, instrument, from, to, limit)
	if err != nil {
		s.l.Error("clickhouse query signals error",
			applogger.String("instrument", instrument),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Classification
	for rows.Next() {
		var (
			c       models.Classification
			thesis  string
			dom     string
			conv    int32
			choppy  uint8
			signal  string
			bullish []string
			bearish []string
		)
		if err := rows.Scan(&c.Timestamp, &c.Instrument, &thesis, &dom, &conv, &choppy, &c.Playbook, &signal, &bullish, &bearish, &c.Narrative); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		c.Thesis = models.Thesis(thesis)
		c.Dominant = models.DominantPlayer(dom)
		c.Conviction = int(conv)
		c.Choppy = choppy == 1
		c.Signal = models.PrimarySignal(signal)
		c.BullishDrivers = bullish
		c.BearishDrivers = bearish
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSignalStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}
