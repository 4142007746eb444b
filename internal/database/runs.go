package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

// Run groups the outcomes of one organize invocation. It is an organizer.Recorder.
type Run struct {
	db        *HistoryDB
	ID        string
	Command   string
	DryRun    bool
	StartedAt time.Time
}

var _ organizer.Recorder = (*Run)(nil)

// StartRun inserts a new run and returns it.
func (h *HistoryDB) StartRun(ctx context.Context, command string, dryRun bool) (*Run, error) {
	run := &Run{
		db:        h,
		ID:        uuid.NewString(),
		Command:   command,
		DryRun:    dryRun,
		StartedAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, dry_run, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, command, dryRun, run.StartedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	return run, nil
}

// Record stores one file outcome under the run.
func (r *Run) Record(ctx context.Context, res organizer.RenameResult) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO renames (
			run_id, source_path, target_path, outcome, media_type,
			title, title_normalized, year, season, episode,
			provider_tag, resolved, confidence, error, sidecar_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, res.Original, res.NewPath, res.Outcome.String(), res.Kind.String(),
		res.Title, NormalizeTitle(res.Title), res.Year, res.Season, res.Episode,
		res.ProviderTag, res.Resolved, res.Confidence, res.ErrorString(), res.SidecarPath,
		time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record rename: %w", err)
	}
	return nil
}

// Finish stamps the run with its end time and outcome counts.
func (r *Run) Finish(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, err := r.db.db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = ?,
			total = (SELECT COUNT(*) FROM renames WHERE run_id = runs.id),
			renamed = (SELECT COUNT(*) FROM renames WHERE run_id = runs.id AND outcome = 'renamed'),
			already_named = (SELECT COUNT(*) FROM renames WHERE run_id = runs.id AND outcome = 'already_named'),
			failed = (SELECT COUNT(*) FROM renames WHERE run_id = runs.id AND outcome = 'failed'),
			resolved = (SELECT COUNT(*) FROM renames WHERE run_id = runs.id AND resolved = 1)
		WHERE id = ?`,
		time.Now().UnixMilli(), r.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RunRecord is a stored run.
type RunRecord struct {
	ID           string
	Command      string
	DryRun       bool
	StartedAt    time.Time
	FinishedAt   time.Time
	Total        int
	Renamed      int
	AlreadyNamed int
	Failed       int
	Resolved     int
}

// Finished reports whether Finish was called for the run.
func (r RunRecord) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration is the wall time of a finished run.
func (r RunRecord) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecentRuns returns up to limit runs, newest first.
func (h *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, command, dry_run, started_at, finished_at,
		       total, renamed, already_named, failed, resolved
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started int64
		var finished sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Command, &r.DryRun, &started, &finished,
			&r.Total, &r.Renamed, &r.AlreadyNamed, &r.Failed, &r.Resolved); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			r.FinishedAt = time.UnixMilli(finished.Int64)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PruneRuns deletes runs started before cutoff together with their renames.
func (h *HistoryDB) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
