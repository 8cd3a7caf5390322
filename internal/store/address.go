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

const addressTableName = "ocpi.adresa"

var addressColumns = utils.MustColumns(types.Address{})

type AddressRepository struct {
	pool *pgxpool.Pool
}

func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

func (r *AddressRepository) ByComplaintID(ctx context.Context, complaintID string) (*types.Address, error) {
	query, args, err := psql().
		Select(addressColumns...).
		From(addressTableName).
		Where(sq.Eq{"contestatie_id": complaintID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate address query: %w", err)
	}

	var address types.Address
	err = pgxscan.Get(ctx, r.pool, &address, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch address: %w", err)
	}

	return &address, nil
}

func insertAddress(ctx context.Context, tx execer, address *types.Address, now time.Time) error {
	address.ID = utils.NewID()
	address.CreatedAt = now
	address.UpdatedAt = now

	values, err := utils.ColumnValues(address)
	if err != nil {
		return fmt.Errorf("failed to map address columns: %w", err)
	}

	query, args, err := psql().
		Insert(addressTableName).
		SetMap(values).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert address query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert address")
}

// upsertAddress updates the complaint's address, creating it if the complaint
// has none yet.
func upsertAddress(ctx context.Context, tx execer, address *types.Address, now time.Time) error {
	query, args, err := psql().
		Update(addressTableName).
		SetMap(map[string]any{
			"judet":            address.County,
			"uat":              address.UAT,
			"adresa_imobil":    address.PropertyAddress,
			"adresa_primarie":  address.MunicipalityAddress,
			"autorizat":        address.AuthorizedPerson,
			"adresa_autorizat": address.AuthorizedPersonAddress,
			"updated_at":       now,
		}).
		Where(sq.Eq{"contestatie_id": address.ComplaintID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update address query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	return insertAddress(ctx, tx, address, now)
}
