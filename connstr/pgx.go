package connstr

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ConnConfig converts the connection string into a pgx connection
// configuration. The engine itself never dials PostgreSQL; this bridge
// exists for callers that hand a ready connection string straight to
// pgx once the relation reports ready.
func (c ConnectionString) ConnConfig() (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(c.String())
	if err != nil {
		return nil, fmt.Errorf("build pgx config: %w", err)
	}
	return cfg, nil
}
