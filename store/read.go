package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pgrel/relation"
)

// Load returns the persisted snapshot for a relation id. A miss is not
// an error: the second return value reports whether a snapshot was
// found.
func (s *Store) Load(ctx context.Context, relationID string) (*relation.Snapshot, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM relation_snapshots WHERE relation_id = ?`,
		relationID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}

	snap, err := unmarshalSnapshot(data)
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %q: %w", relationID, err)
	}
	return snap, true, nil
}

// List returns the relation ids with a persisted snapshot, sorted.
// The reconciler uses this to detect relations that have departed from
// the current input batch.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT relation_id FROM relation_snapshots ORDER BY relation_id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return ids, nil
}
