package seed

import (
	"context"
	"fmt"
	"time"

	"contestatii/pkg/types"

	"github.com/sirupsen/logrus"
)

type ComplaintStore interface {
	Stats(ctx context.Context) (*types.Stats, error)
	CreateComplaint(ctx context.Context, in *types.NewComplaint) (*types.Created, error)
}

// demoComplaints covers each decision state once so the stats page and the
// report have something to show. The first claimant of each is the main one.
func demoComplaints(userID string) []*types.NewComplaint {
	complaint := func(requestNumber string, requestDate types.Date, propertyID string, approved, rejected bool, notes string) *types.Complaint {
		return &types.Complaint{
			RequestNumber:     types.Nullable(requestNumber),
			RequestDate:       requestDate,
			ChosenDate:        types.NewDate(2024, time.April, 26),
			PropertyID:        types.Nullable(propertyID),
			AttachedDocuments: types.Nullable("copie CI, extras de carte funciară, schiță imobil"),
			Notes:             types.Nullable(notes),
			FieldVerified:     approved,
			Approved:          approved,
			Rejected:          rejected,
			UserID:            types.Nullable(userID),
		}
	}

	address := func(uat, propertyAddress string) *types.Address {
		return &types.Address{
			County:              types.Nullable("CT"),
			UAT:                 types.Nullable(uat),
			PropertyAddress:     types.Nullable(propertyAddress),
			MunicipalityAddress: types.Nullable("Str. Independenței nr. 1, " + uat),
		}
	}

	claimant := func(last, first, cnp, home string) *types.Claimant {
		return &types.Claimant{LastName: last, FirstName: first, CNP: cnp, PersonalAddress: types.Nullable(home)}
	}

	return []*types.NewComplaint{
		{
			Complaint: complaint("1024", types.NewDate(2024, time.March, 4), "101234", true, false, "se corectează suprafața la 512 mp."),
			Address:   address("Medgidia", "Str. Viilor nr. 12"),
			Claimants: []*types.Claimant{
				claimant("Popescu", "Ion", "1700101131234", "Str. Viilor nr. 12, Medgidia"),
				claimant("Popescu", "Maria", "2720304131235", "Str. Viilor nr. 12, Medgidia"),
			},
		},
		{
			Complaint: complaint("1031", types.NewDate(2024, time.March, 11), "101877", false, true, ""),
			Address:   address("Cernavodă", "Str. Dunării nr. 7"),
			Claimants: []*types.Claimant{
				claimant("Ionescu", "Dan", "1650712131236", "Str. Mării nr. 3, Constanța"),
			},
		},
		{
			Complaint: complaint("1047", types.NewDate(2024, time.March, 19), "102310", false, false, ""),
			Address:   address("Mihai Viteazu", "Sat Sinoie, nr. 40"),
			Claimants: []*types.Claimant{
				claimant("Dumitru", "Elena", "2801115131237", "Sat Sinoie, nr. 40"),
			},
		},
	}
}

// SeedComplaints inserts the demo complaints into an empty database. It does
// nothing when any complaint exists, so numbering is never disturbed.
func SeedComplaints(ctx context.Context, repo ComplaintStore, userID string, logger logrus.FieldLogger) (int, error) {
	stats, err := repo.Stats(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	if stats.Total > 0 {
		logger.WithField("total", stats.Total).Info("complaints present, skipping demo complaints")
		return 0, nil
	}

	seeded := 0
	for _, in := range demoComplaints(userID) {
		created, err := repo.CreateComplaint(ctx, in)
		if err != nil {
			return seeded, fmt.Errorf("failed to create demo complaint %s: %w", *in.Complaint.RequestNumber, err)
		}

		logger.WithFields(logrus.Fields{
			"complaint_id":      created.ID,
			"numar_contestatie": created.SequenceNumber,
		}).Info("demo complaint created")
		seeded++
	}

	return seeded, nil
}
