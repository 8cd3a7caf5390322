package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contestatii/internal/utils"
	"contestatii/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const complaintTableName = "ocpi.contestatii"

// sequenceLockKey is the advisory lock serializing sequence number allocation.
const sequenceLockKey int64 = 0x6f637069

var complaintColumns = utils.MustColumns(types.Complaint{})

type ComplaintRepository struct {
	pool *pgxpool.Pool
}

func NewComplaintRepository(pool *pgxpool.Pool) *ComplaintRepository {
	return &ComplaintRepository{pool: pool}
}

// NextSequenceNumber previews the number the next creation would receive. It
// takes no lock; the number actually assigned is decided inside the creation
// transaction.
func (r *ComplaintRepository) NextSequenceNumber(ctx context.Context) (int, error) {
	return nextSequenceNumber(ctx, r.pool)
}

func nextSequenceNumber(ctx context.Context, q pgxscan.Querier) (int, error) {
	query, args, err := psql().
		Select("COALESCE(MAX(numar_contestatie), 0) + 1").
		From(complaintTableName).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate next sequence number query: %w", err)
	}

	var next int
	if err := pgxscan.Get(ctx, q, &next, query, args...); err != nil {
		return 0, fmt.Errorf("failed to read max sequence number: %w", err)
	}

	return next, nil
}

// allocateSequenceNumber holds the allocation lock until tx ends, so two
// concurrent creations can never observe the same maximum.
func allocateSequenceNumber(ctx context.Context, tx pgx.Tx) (int, error) {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", sequenceLockKey); err != nil {
		return 0, fmt.Errorf("failed to acquire sequence lock: %w", err)
	}

	return nextSequenceNumber(ctx, tx)
}

// CreateComplaint persists a complaint together with its address and
// claimants atomically. The complaint is written first to obtain its id; any
// failing step rolls back the whole creation.
func (r *ComplaintRepository) CreateComplaint(ctx context.Context, in *types.NewComplaint) (*types.Created, error) {
	if in == nil || in.Complaint == nil || in.Address == nil {
		return nil, fmt.Errorf("complaint and address are required")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx for complaint create: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	number, err := allocateSequenceNumber(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrComplaintInsert, err)
	}

	now := time.Now()

	complaint := in.Complaint
	complaint.ID = utils.NewID()
	complaint.SequenceNumber = number
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	if err := insertComplaint(ctx, tx, complaint); err != nil {
		return nil, err
	}

	in.Address.ComplaintID = complaint.ID
	if err := insertAddress(ctx, tx, in.Address, now); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrAddressInsert, err)
	}

	// claimants keep submission order; the first one is the main claimant
	for i, claimant := range in.Claimants {
		claimant.ComplaintID = complaint.ID
		if err := insertClaimant(ctx, tx, claimant, now.Add(time.Duration(i)*time.Microsecond)); err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrClaimantInsert, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit complaint create tx: %w", err)
	}

	return &types.Created{ID: complaint.ID, SequenceNumber: number}, nil
}

// CreateComplaintShell persists a complaint and its address without any
// claimant; claimants are added afterwards through ClaimantRepository.Create.
func (r *ComplaintRepository) CreateComplaintShell(ctx context.Context, in *types.NewComplaint) (*types.Created, error) {
	if in == nil {
		return nil, fmt.Errorf("complaint and address are required")
	}

	shell := *in
	shell.Claimants = nil

	return r.CreateComplaint(ctx, &shell)
}

func insertComplaint(ctx context.Context, tx execer, complaint *types.Complaint) error {
	values, err := utils.ColumnValues(complaint)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrComplaintInsert, err)
	}

	query, args, err := psql().
		Insert(complaintTableName).
		SetMap(values).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: failed to generate insert complaint query: %w", types.ErrComplaintInsert, err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		if _, constraint := pgErrorCode(err); isUniqueViolation(err) && constraint == "contestatii_numar_contestatie_key" {
			return fmt.Errorf("%w: %w", types.ErrComplaintInsert, types.ErrDuplicateNumber)
		}
		return fmt.Errorf("%w: %w", types.ErrComplaintInsert, err)
	}

	return nil
}

func (r *ComplaintRepository) Complaint(ctx context.Context, complaintID string) (*types.Complaint, error) {
	query, args, err := psql().
		Select(complaintColumns...).
		From(complaintTableName).
		Where(sq.Eq{"id": complaintID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate complaint query: %w", err)
	}

	var complaint types.Complaint
	err = pgxscan.Get(ctx, r.pool, &complaint, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrComplaintNotFound
		}
		return nil, fmt.Errorf("failed to fetch complaint: %w", err)
	}

	return &complaint, nil
}

// ComplaintView returns the joined view of one complaint. When the complaint
// has several claimants the earliest one is reported.
func (r *ComplaintRepository) ComplaintView(ctx context.Context, complaintID string) (*types.ComplaintRow, error) {
	query, args, err := joinedSelect().
		Where(sq.Eq{"c.id": complaintID}).
		OrderBy("p.created_at ASC", "p.id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate complaint view query: %w", err)
	}

	var row types.ComplaintRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrComplaintNotFound
		}
		return nil, fmt.Errorf("failed to fetch complaint view: %w", err)
	}

	return &row, nil
}

// UpdateComplaint rewrites the complaint fields and its address, and, when
// claimant is not nil, the single claimant it names. The claimant must belong
// to the complaint. Everything happens in one transaction.
func (r *ComplaintRepository) UpdateComplaint(ctx context.Context, complaintID string, complaint *types.Complaint, address *types.Address, claimant *types.Claimant) error {
	now := time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx for complaint update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Update(complaintTableName).
		SetMap(map[string]any{
			"numar_proces_verbal": complaint.ProtocolNumber,
			"data_proces_verbal":  complaint.ProtocolDate,
			"numar_cerere":        complaint.RequestNumber,
			"data_cerere":         complaint.RequestDate,
			"data_aleasa":         complaint.ChosenDate,
			"id_imobil":           complaint.PropertyID,
			"documente_atasate":   complaint.AttachedDocuments,
			"observatii":          complaint.Notes,
			"verificat_teren":     complaint.FieldVerified,
			"admis":               complaint.Approved,
			"respins":             complaint.Rejected,
			"updated_at":          now,
		}).
		Where(sq.Eq{"id": complaintID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update complaint query for complaint %s: %w", complaintID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrComplaintNotFound
	}

	if address != nil {
		address.ComplaintID = complaintID
		if err := upsertAddress(ctx, tx, address, now); err != nil {
			return err
		}
	}

	if claimant != nil {
		claimant.ComplaintID = complaintID
		if err := updateClaimant(ctx, tx, claimant, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit complaint update tx: %w", err)
	}

	return nil
}

// DeleteComplaint removes a complaint; its claimants and address go with it
// through ON DELETE CASCADE.
func (r *ComplaintRepository) DeleteComplaint(ctx context.Context, complaintID string) error {

	query, args, err := psql().Delete(complaintTableName).Where(sq.Eq{"id": complaintID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete complaint query for complaint %s: %w", complaintID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete complaint: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrComplaintNotFound
	}

	return nil
}

// IsStepError reports whether err came from one of the creation steps.
func IsStepError(err error) bool {
	return errors.Is(err, types.ErrComplaintInsert) ||
		errors.Is(err, types.ErrAddressInsert) ||
		errors.Is(err, types.ErrClaimantInsert)
}
