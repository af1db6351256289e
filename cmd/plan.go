package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/kilianp07/pumpplan/app"
	"github.com/kilianp07/pumpplan/core/plan"
	"github.com/kilianp07/pumpplan/pkg/export"
)

const formatSheets = "sheets"

var (
	planYear     int
	planTarget   int
	planOut      string
	planFormat   string
	planProgress bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the operating plan of a year",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().IntVar(&planYear, "year", 0, "year to plan")
	planCmd.Flags().IntVar(&planTarget, "target", 0, "yearly production target")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "-", "output file, or directory for sheets; - for stdout")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", export.FormatJSON, "output format: json, csv, html or sheets")
	planCmd.Flags().BoolVar(&planProgress, "progress", false, "show pass progress on stderr")
	_ = planCmd.MarkFlagRequired("year")
	_ = planCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(planCmd)
}

// passProgress draws one progress bar per optimizer pass.
type passProgress struct {
	out  io.Writer
	pass plan.Pass
	bar  *pb.ProgressBar
}

func (p *passProgress) update(pass plan.Pass, done, total int) {
	if p.bar == nil || pass != p.pass {
		p.finish()
		p.pass = pass
		p.bar = pb.New(total).Prefix(string(pass) + " ")
		p.bar.Output = p.out
		p.bar.Start()
	}
	p.bar.Set(done)
}

func (p *passProgress) finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	switch planFormat {
	case export.FormatJSON, export.FormatCSV, export.FormatHTML:
	case formatSheets:
		if planOut == "-" {
			return fmt.Errorf("sheets format needs --out directory")
		}
	default:
		return fmt.Errorf("unsupported format %q", planFormat)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	req := plan.Request{Year: planYear, Target: planTarget}
	var progress *passProgress
	if planProgress {
		progress = &passProgress{out: cmd.ErrOrStderr()}
		req.Progress = progress.update
	}
	res, runErr := svc.Plan(ctx, req)
	if progress != nil {
		progress.finish()
	}
	if res == nil {
		return runErr
	}
	if err := writeResult(cmd.OutOrStdout(), res); err != nil {
		return errors.Join(runErr, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "run %s %s: production %d, cost %.2f\n",
		res.RunID, res.Summary.Status, res.Summary.FinalProduction, res.Summary.TotalCost)
	return runErr
}

func writeResult(stdout io.Writer, res *plan.Result) error {
	if planFormat == formatSheets {
		_, err := export.WriteSheets(planOut, res.Grid)
		return err
	}
	if planOut == "-" {
		return export.Write(stdout, planFormat, res)
	}
	f, err := os.Create(planOut)
	if err != nil {
		return err
	}
	if err := export.Write(f, planFormat, res); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
