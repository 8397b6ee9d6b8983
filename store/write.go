package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pgrel/relation"
)

// Save upserts the snapshot for its relation id. When the snapshot's
// content fingerprint matches the stored row, the write is skipped, so
// repeated evaluations of an unchanged relation do not churn the
// database file.
func (s *Store) Save(ctx context.Context, snap *relation.Snapshot) error {
	fingerprint, err := snap.Fingerprint()
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	var stored string
	err = s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM relation_snapshots WHERE relation_id = ?`,
		snap.RelationID,
	).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if stored == fingerprint {
		slog.Debug("snapshot unchanged, skipping write", "relation", snap.RelationID)
		return nil
	}

	data, err := marshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO relation_snapshots (relation_id, version, fingerprint, snapshot)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(relation_id) DO UPDATE SET
			version     = excluded.version,
			fingerprint = excluded.fingerprint,
			snapshot    = excluded.snapshot,
			updated_at  = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`,
		snap.RelationID,
		snap.Version.String(),
		fingerprint,
		data,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.Debug("snapshot saved", "relation", snap.RelationID, "version", snap.Version.String())
	return nil
}

// Delete removes the persisted snapshot for a departed relation.
// Deleting an absent relation is not an error.
func (s *Store) Delete(ctx context.Context, relationID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM relation_snapshots WHERE relation_id = ?`, relationID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
