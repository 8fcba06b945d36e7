// internal/routing/segments.go
//
// DB-backed segment vocabulary (import-cycle safe).
//
// Context
// -------
// The static segment table from conf/global.yaml covers the routes the
// storefront ships with.  Content editors can add localized slugs for new
// routes through the `route_segment` table:
//
//	CREATE TABLE route_segment (
//	    canonical VARCHAR(64) NOT NULL,
//	    locale    VARCHAR(8)  NOT NULL,
//	    localized VARCHAR(64) NOT NULL,
//	    PRIMARY KEY (canonical, locale)
//	);
//
// SegmentCache layers those rows over the static table and satisfies
// i18n.VocabularySource, so the locale middleware never knows whether a
// database exists.
//
// Workflow
// --------
//   1. Boot calls NewSegmentCache(db, static, ttl) and Load(ctx).
//   2. Vocabulary() returns the current table.  Once the TTL has passed it
//      triggers one background reload (singleflight) and keeps serving the
//      old table until the reload lands.
//   3. Reload failures keep the last good table and log a warning.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package routing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/storefront/internal/i18n"
)

const segmentQuery = `SELECT canonical, locale, localized FROM route_segment`

// reloadTimeout bounds one background reload.
const reloadTimeout = 5 * time.Second

// SegmentRow mirrors one row in `route_segment`.
type SegmentRow struct {
	Canonical string `db:"canonical"`
	Locale    string `db:"locale"`
	Localized string `db:"localized"`
}

// SegmentCache stores the merged vocabulary plus TTL state.  Zero value is
// unusable; construct with NewSegmentCache.
type SegmentCache struct {
	db     *sqlx.DB
	static *i18n.Vocabulary
	ttl    time.Duration
	sfg    singleflight.Group

	refreshing atomic.Bool

	mu       sync.RWMutex
	current  *i18n.Vocabulary
	loadedAt time.Time
}

// NewSegmentCache serves static until the first successful Load.
func NewSegmentCache(db *sqlx.DB, static *i18n.Vocabulary, ttl time.Duration) *SegmentCache {
	return &SegmentCache{db: db, static: static, ttl: ttl, current: static}
}

// Load refreshes the vocabulary from route_segment.
func (c *SegmentCache) Load(ctx context.Context) error {
	_, err, _ := c.sfg.Do("load", func() (any, error) {
		var rows []SegmentRow
		if err := c.db.SelectContext(ctx, &rows, segmentQuery); err != nil {
			return nil, err
		}

		extra := make(map[string]map[string]string)
		for _, row := range rows {
			m, ok := extra[row.Canonical]
			if !ok {
				m = make(map[string]string, 2)
				extra[row.Canonical] = m
			}
			m[row.Locale] = row.Localized
		}
		merged := c.static.Merge(extra)

		c.mu.Lock()
		c.current = merged
		c.loadedAt = time.Now()
		c.mu.Unlock()

		zap.L().Debug("segment cache load", zap.Int("rows", len(rows)))
		return nil, nil
	})
	return err
}

// Vocabulary implements i18n.VocabularySource.
func (c *SegmentCache) Vocabulary() *i18n.Vocabulary {
	c.mu.RLock()
	v := c.current
	stale := time.Since(c.loadedAt) > c.ttl
	c.mu.RUnlock()

	if stale && c.refreshing.CompareAndSwap(false, true) {
		go c.refresh()
	}
	return v
}

func (c *SegmentCache) refresh() {
	defer c.refreshing.Store(false)
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	if err := c.Load(ctx); err != nil {
		zap.L().Warn("segment cache reload failed", zap.Error(err))
		// Push the next attempt out by one TTL so a dead DB is not hammered.
		c.mu.Lock()
		c.loadedAt = time.Now()
		c.mu.Unlock()
	}
}

// Upsert writes one row.  Used by cmd/segments.
func Upsert(ctx context.Context, db *sqlx.DB, row SegmentRow) error {
	const q = `INSERT INTO route_segment (canonical, locale, localized)
	           VALUES (:canonical, :locale, :localized)
	           ON DUPLICATE KEY UPDATE localized = VALUES(localized)`
	_, err := db.NamedExecContext(ctx, q, row)
	return err
}

// List returns every row, ordered for display.
func List(ctx context.Context, db *sqlx.DB) ([]SegmentRow, error) {
	var rows []SegmentRow
	err := db.SelectContext(ctx, &rows, segmentQuery+` ORDER BY canonical, locale`)
	return rows, err
}
