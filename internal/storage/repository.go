package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertSampleSQL = `INSERT INTO rsi_samples (
        pair,
        timeframe,
        close_ts,
        rsi,
        price,
        zone
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (pair, timeframe, close_ts) DO UPDATE
    SET
        rsi   = EXCLUDED.rsi,
        price = EXCLUDED.price,
        zone  = EXCLUDED.zone;`

	listSamplesBetweenSQL = `SELECT
        pair,
        timeframe,
        close_ts,
        rsi,
        price,
        zone,
        created_at
    FROM rsi_samples
    WHERE pair = $1
      AND timeframe = $2
      AND close_ts >= $3
      AND close_ts < $4
    ORDER BY close_ts;`

	listRecentSamplesSQL = `SELECT
        pair,
        timeframe,
        close_ts,
        rsi,
        price,
        zone,
        created_at
    FROM rsi_samples
    ORDER BY close_ts DESC
    LIMIT $1;`

	countSamplesSQL = `SELECT COUNT(*) FROM rsi_samples;`

	insertAlertSQL = `INSERT INTO alerts (
        pair,
        timeframe,
        close_ts,
        rsi,
        price,
        zone
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    RETURNING id, pair, timeframe, close_ts, rsi, price, zone, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        pair,
        timeframe,
        close_ts,
        rsi,
        price,
        zone,
        created_at
    FROM alerts
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteAlertsBeforeSQL = `DELETE FROM alerts WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// SampleStore defines operations for RSI sample persistence.
type SampleStore interface {
	UpsertSample(ctx context.Context, sample RSISample) error
	ListSamplesBetween(ctx context.Context, pair, timeframe string, from, to time.Time) ([]RSISample, error)
	ListRecentSamples(ctx context.Context, limit int) ([]RSISample, error)
	CountSamples(ctx context.Context) (int64, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
	DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to RSI samples and alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertSample persists or updates an RSI sample.
func (s *Store) UpsertSample(ctx context.Context, sample RSISample) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertSampleSQL,
		sample.Pair,
		sample.Timeframe,
		sample.CloseTS,
		sample.RSI,
		sample.Price.String(),
		sample.Zone,
	)
	if execErr != nil {
		return fmt.Errorf("upsert rsi sample: %w", execErr)
	}
	return nil
}

// ListSamplesBetween lists one series' samples within a time window.
func (s *Store) ListSamplesBetween(ctx context.Context, pair, timeframe string, from, to time.Time) ([]RSISample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, pair, timeframe, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows)
}

// ListRecentSamples lists the newest samples across all series.
func (s *Store) ListRecentSamples(ctx context.Context, limit int) ([]RSISample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSamplesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent samples: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows)
}

// CountSamples returns the total persisted sample count.
func (s *Store) CountSamples(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := pool.QueryRow(ctx, countSamplesSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return count, nil
}

// InsertAlert persists a dispatched alert.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.Pair,
		alert.Timeframe,
		alert.CloseTS,
		alert.RSI,
		alert.Price.String(),
		alert.Zone,
	)

	stored, scanErr := scanAlert(row)
	if scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	return stored, nil
}

// ListRecentAlerts lists the newest dispatched alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0)
	for rows.Next() {
		alert, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

// DeleteAlertsBefore prunes old audit records.
func (s *Store) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, deleteAlertsBeforeSQL, olderThan); err != nil {
		return fmt.Errorf("delete alerts before: %w", err)
	}
	return nil
}

func collectSamples(rows pgx.Rows) ([]RSISample, error) {
	samples := make([]RSISample, 0)
	for rows.Next() {
		sample, scanErr := scanSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

func scanSample(row pgx.Row) (RSISample, error) {
	var sample RSISample
	var price string
	if err := row.Scan(
		&sample.Pair,
		&sample.Timeframe,
		&sample.CloseTS,
		&sample.RSI,
		&price,
		&sample.Zone,
		&sample.CreatedAt,
	); err != nil {
		return RSISample{}, fmt.Errorf("scan sample: %w", err)
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return RSISample{}, fmt.Errorf("parse sample price: %w", err)
	}
	sample.Price = parsed
	return sample, nil
}

func scanAlert(row pgx.Row) (AlertRecord, error) {
	var alert AlertRecord
	var price string
	if err := row.Scan(
		&alert.ID,
		&alert.Pair,
		&alert.Timeframe,
		&alert.CloseTS,
		&alert.RSI,
		&price,
		&alert.Zone,
		&alert.CreatedAt,
	); err != nil {
		return AlertRecord{}, fmt.Errorf("scan alert: %w", err)
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return AlertRecord{}, fmt.Errorf("parse alert price: %w", err)
	}
	alert.Price = parsed
	return alert, nil
}

var (
	_ SampleStore    = (*Store)(nil)
	_ AlertStore     = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)
