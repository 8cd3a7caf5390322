package store

import (
	"context"
	"fmt"

	"contestatii/pkg/types"

	"github.com/georgysavva/scany/v2/pgxscan"
)

// Stats counts complaints per decision flag. A complaint carrying both flags
// is counted as approved and as rejected (and as conflicting), never as
// pending.
func (r *ComplaintRepository) Stats(ctx context.Context) (*types.Stats, error) {
	query, args, err := psql().
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE admis) AS approved",
			"COUNT(*) FILTER (WHERE respins) AS rejected",
			"COUNT(*) FILTER (WHERE NOT admis AND NOT respins) AS pending",
			"COUNT(*) FILTER (WHERE admis AND respins) AS conflicting",
		).
		From(complaintTableName).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate stats query: %w", err)
	}

	var stats types.Stats
	if err := pgxscan.Get(ctx, r.pool, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch complaint stats: %w", err)
	}

	return &stats, nil
}
