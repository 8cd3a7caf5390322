package store

import (
	"context"
	"fmt"
	"time"

	"contestatii/internal/utils"
	"contestatii/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const claimantTableName = "ocpi.person"

var claimantColumns = utils.MustColumns(types.Claimant{})

type ClaimantRepository struct {
	pool *pgxpool.Pool
}

func NewClaimantRepository(pool *pgxpool.Pool) *ClaimantRepository {
	return &ClaimantRepository{pool: pool}
}

// Create adds one claimant to an existing complaint.
func (r *ClaimantRepository) Create(ctx context.Context, claimant *types.Claimant) error {
	err := insertClaimant(ctx, r.pool, claimant, time.Now())
	if err != nil && isForeignKeyViolation(err) {
		return types.ErrComplaintNotFound
	}

	return err
}

func (r *ClaimantRepository) ByComplaintID(ctx context.Context, complaintID string) ([]*types.Claimant, error) {
	query, args, err := psql().
		Select(claimantColumns...).
		From(claimantTableName).
		Where(sq.Eq{"contestatie_id": complaintID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate claimants query: %w", err)
	}

	claimants := make([]*types.Claimant, 0)
	err = pgxscan.Select(ctx, r.pool, &claimants, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch claimants: %w", err)
	}

	return claimants, nil
}

func insertClaimant(ctx context.Context, tx execer, claimant *types.Claimant, now time.Time) error {
	claimant.ID = utils.NewID()
	claimant.CreatedAt = now
	claimant.UpdatedAt = now

	values, err := utils.ColumnValues(claimant)
	if err != nil {
		return fmt.Errorf("failed to map claimant columns: %w", err)
	}

	query, args, err := psql().
		Insert(claimantTableName).
		SetMap(values).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert claimant query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert claimant")
}

// updateClaimant rewrites the claimant named by claimant.ID, provided it
// belongs to claimant.ComplaintID.
func updateClaimant(ctx context.Context, tx execer, claimant *types.Claimant, now time.Time) error {
	query, args, err := psql().
		Update(claimantTableName).
		SetMap(map[string]any{
			"nume":             claimant.LastName,
			"prenume":          claimant.FirstName,
			"cnp":              claimant.CNP,
			"adresa_personala": claimant.PersonalAddress,
			"updated_at":       now,
		}).
		Where(sq.Eq{"id": claimant.ID, "contestatie_id": claimant.ComplaintID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update claimant query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update claimant: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrClaimantNotFound
	}

	return nil
}
