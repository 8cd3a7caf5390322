package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"contestatii/internal/db"
	"contestatii/internal/report"
	"contestatii/internal/store"
	"contestatii/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var filterFlags = []cli.Flag{
	&cli.IntFlag{Name: "numar", Usage: "Complaint number"},
	&cli.StringFlag{Name: "nume", Usage: "Claimant last name (substring)"},
	&cli.StringFlag{Name: "prenume", Usage: "Claimant first name (substring)"},
	&cli.StringFlag{Name: "cnp", Usage: "Claimant CNP (substring)"},
	&cli.StringFlag{Name: "judet", Usage: "County code, e.g. CT"},
	&cli.StringFlag{Name: "imobil", Usage: "Property ID (substring)"},
	&cli.StringFlag{Name: "status", Usage: "pending, approved or rejected"},
	&cli.StringFlag{Name: "de-la", Usage: "Chosen date from (YYYY-MM-DD)"},
	&cli.StringFlag{Name: "pana-la", Usage: "Chosen date until (YYYY-MM-DD)"},
}

func filterFromFlags(c *cli.Context) (*types.ComplaintFilter, error) {
	f := &types.ComplaintFilter{
		LastName:   c.String("nume"),
		FirstName:  c.String("prenume"),
		CNP:        c.String("cnp"),
		County:     c.String("judet"),
		PropertyID: c.String("imobil"),
	}

	if c.IsSet("numar") {
		f.SequenceNumber = types.SomeInt(c.Int("numar"))
	}

	yes, no := types.SomeBool(true), types.SomeBool(false)
	switch types.ComplaintStatus(c.String("status")) {
	case "":
	case types.StatusApproved:
		f.Approved, f.Rejected = yes, no
	case types.StatusRejected:
		f.Approved, f.Rejected = no, yes
	case types.StatusPending:
		f.Approved, f.Rejected = no, no
	default:
		return nil, fmt.Errorf("unknown status %q", c.String("status"))
	}

	var err error
	if f.DateStart, err = types.ParseDate(c.String("de-la")); err != nil {
		return nil, err
	}
	if f.DateEnd, err = types.ParseDate(c.String("pana-la")); err != nil {
		return nil, err
	}

	return f, nil
}

func filterComplaints(c *cli.Context) ([]*types.ComplaintRow, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	f, err := filterFromFlags(c)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	return store.NewComplaintRepository(pool).FilterComplaints(ctx, f)
}

var searchCommand = &cli.Command{
	Name:  "search",
	Usage: "Print the complaint rows matching the given filters",
	Flags: filterFlags,
	Action: func(c *cli.Context) error {
		rows, err := filterComplaints(c)
		if err != nil {
			return err
		}

		_, err = pp.Println(rows)
		return err
	},
}

var reportCommand = &cli.Command{
	Name:  "report",
	Usage: "Write the proces-verbal PDF for the complaints matching the given filters",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (defaults to proces-verbal-<date>.pdf)"},
		&cli.StringFlag{Name: "config", Usage: "Report YAML config", EnvVars: []string{"REPORT_CONFIG_PATH"}},
	}, filterFlags...),
	Action: func(c *cli.Context) error {
		reportConfig, err := report.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}

		rows, err := filterComplaints(c)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return fmt.Errorf("no complaints match the given filters")
		}

		out := c.String("out")
		if out == "" {
			out = report.Filename(time.Now())
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := report.NewRenderer(reportConfig).Render(f, rows); err != nil {
			return err
		}

		fmt.Println(out)

		return f.Close()
	},
}
