package store

import (
	"context"
	"fmt"
	"strings"

	"contestatii/internal/utils"
	"contestatii/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var joinedColumns = append(
	utils.PrefixSliceOfStrings("c", complaintColumns),
	"p.id AS person_id",
	"p.nume",
	"p.prenume",
	"p.cnp",
	"p.adresa_personala",
	"a.judet AS regiune",
	"a.uat",
	"a.adresa_imobil AS adresa",
	"a.adresa_primarie",
	"a.autorizat",
	"a.adresa_autorizat",
)

// joinedSelect is complaint ⋈ claimant ⋈ address, left-joined so complaints
// lacking either child still come back.
func joinedSelect() sq.SelectBuilder {
	return psql().
		Select(joinedColumns...).
		From(complaintTableName + " c").
		LeftJoin(claimantTableName + " p ON p.contestatie_id = c.id").
		LeftJoin(addressTableName + " a ON a.contestatie_id = c.id")
}

func filterQuery(f *types.ComplaintFilter) sq.SelectBuilder {
	q := joinedSelect()

	if f == nil {
		f = &types.ComplaintFilter{}
	}

	if f.SequenceNumber.Valid {
		q = q.Where(sq.Eq{"c.numar_contestatie": f.SequenceNumber.Value})
	}

	substrings := []struct {
		column string
		value  string
	}{
		{"p.nume", f.LastName},
		{"p.prenume", f.FirstName},
		{"p.cnp", f.CNP},
		{"c.numar_proces_verbal", f.ProtocolNumber},
		{"c.numar_cerere", f.RequestNumber},
		{"c.id_imobil", f.PropertyID},
	}
	for _, s := range substrings {
		if v := strings.TrimSpace(s.value); v != "" {
			q = q.Where(sq.ILike{s.column: contains(v)})
		}
	}

	if county := strings.TrimSpace(f.County); county != "" {
		q = q.Where(sq.Eq{"a.judet": county})
	}

	flags := []struct {
		column string
		value  types.OptionalBool
	}{
		{"c.verificat_teren", f.FieldVerified},
		{"c.admis", f.Approved},
		{"c.respins", f.Rejected},
	}
	for _, flag := range flags {
		if flag.value.Valid {
			q = q.Where(sq.Eq{flag.column: flag.value.Value})
		}
	}

	if f.DateStart.Valid {
		q = q.Where(sq.GtOrEq{"c.data_aleasa": f.DateStart})
	}
	if f.DateEnd.Valid {
		q = q.Where(sq.LtOrEq{"c.data_aleasa": f.DateEnd})
	}

	return q.OrderBy("c.numar_contestatie ASC", "p.created_at ASC", "p.id ASC")
}

// FilterComplaints returns one row per claimant of every complaint matching
// the filter, ordered by sequence number.
func (r *ComplaintRepository) FilterComplaints(ctx context.Context, f *types.ComplaintFilter) ([]*types.ComplaintRow, error) {
	query, args, err := filterQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate filter complaints query: %w", err)
	}

	rows := make([]*types.ComplaintRow, 0)
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to filter complaints: %w", err)
	}

	return rows, nil
}
