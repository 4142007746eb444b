package database

import (
	"context"
	"database/sql"
	"time"
)

// RenameRecord is one stored file outcome.
type RenameRecord struct {
	ID          int64
	RunID       string
	SourcePath  string
	TargetPath  string
	Outcome     string
	MediaType   string
	Title       string
	Year        int
	Season      int
	Episode     int
	ProviderTag string
	Resolved    bool
	Confidence  float64
	Error       string
	SidecarPath string
	CreatedAt   time.Time
}

const renameColumns = `id, run_id, source_path, target_path, outcome, media_type,
	title, year, season, episode, provider_tag, resolved, confidence, error,
	sidecar_path, created_at`

func scanRenames(rows *sql.Rows) ([]RenameRecord, error) {
	defer rows.Close()

	var out []RenameRecord
	for rows.Next() {
		var r RenameRecord
		var created int64
		if err := rows.Scan(&r.ID, &r.RunID, &r.SourcePath, &r.TargetPath, &r.Outcome, &r.MediaType,
			&r.Title, &r.Year, &r.Season, &r.Episode, &r.ProviderTag, &r.Resolved, &r.Confidence, &r.Error,
			&r.SidecarPath, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunRenames returns the outcomes of one run in insertion order.
func (h *HistoryDB) RunRenames(ctx context.Context, runID string) ([]RenameRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.QueryContext(ctx,
		`SELECT `+renameColumns+` FROM renames WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	return scanRenames(rows)
}

// FindRenames returns the latest outcomes whose title matches title after
// normalization.
func (h *HistoryDB) FindRenames(ctx context.Context, title string, limit int) ([]RenameRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.QueryContext(ctx,
		`SELECT `+renameColumns+` FROM renames WHERE title_normalized = ? ORDER BY id DESC LIMIT ?`,
		NormalizeTitle(title), limit)
	if err != nil {
		return nil, err
	}
	return scanRenames(rows)
}

// LastMoveTo returns the most recent successful rename onto target, if any.
func (h *HistoryDB) LastMoveTo(ctx context.Context, target string) (*RenameRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.QueryContext(ctx,
		`SELECT `+renameColumns+` FROM renames
		 WHERE target_path = ? AND outcome = 'renamed'
		 ORDER BY id DESC LIMIT 1`, target)
	if err != nil {
		return nil, err
	}
	recs, err := scanRenames(rows)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// OutcomeCounts totals all stored outcomes by outcome name.
func (h *HistoryDB) OutcomeCounts(ctx context.Context) (map[string]int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM renames GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}
