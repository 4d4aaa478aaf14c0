package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FrederickAmakye/SMSPlus/internal/report"
	"github.com/FrederickAmakye/SMSPlus/internal/transfer"
)

// reportFunc produces one report's rows and the data printed under --json.
type reportFunc func(ctx context.Context) (kind report.Kind, rows []report.Row, data any, err error)

// ─────────────────────────────────────────────────────────────────────────────
// newReportCmd groups the aggregate reports. Each one prints a table, or
// with --out writes the same rows to a CSV file:
//
//	smsplus report gpa
//	smsplus report top --programme "B.Tech IT" --out top.csv
//
// A bare --out file name lands in transfer.export_dir.
// ─────────────────────────────────────────────────────────────────────────────
func newReportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate reports",
	}
	cmd.PersistentFlags().StringVar(&out, "out", "", "write the report to this CSV file")

	// runReport wraps a reportFunc into a RunE shared by every sub-command.
	runReport := func(fn reportFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			kind, rows, data, err := fn(cmd.Context())
			if err != nil {
				return err
			}

			if out != "" {
				path := transfer.OutputPath(a.cfg.Transfer.ExportDir, out)
				if err := transfer.Export(path, kind, rows); err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), map[string]any{"path": path, "rows": len(rows)}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Exported %d rows to %s\n", len(rows), path)
					return err
				})
			}

			return a.emit(cmd.OutOrStdout(), data, func(w io.Writer) error {
				return printTable(w, kind, rows)
			})
		}
	}

	var (
		topProgramme string
		topLevel     int
		threshold    float64
	)

	top := &cobra.Command{
		Use:   "top",
		Short: "Top 10 students by GPA",
		Args:  cobra.NoArgs,
		RunE: runReport(func(ctx context.Context) (report.Kind, []report.Row, any, error) {
			students, err := a.svc.TopPerformers(ctx, topProgramme, topLevel)
			return report.KindStudent, report.Students(students), students, err
		}),
	}
	top.Flags().StringVar(&topProgramme, "programme", "", "only this programme (any case)")
	top.Flags().IntVar(&topLevel, "level", 0, "only this level")

	atRisk := &cobra.Command{
		Use:   "at-risk",
		Short: "Students below the at-risk GPA threshold",
		Args:  cobra.NoArgs,
	}
	atRisk.Flags().Float64Var(&threshold, "threshold", 0, "GPA threshold (default from reports.at_risk_threshold)")
	atRisk.RunE = runReport(func(ctx context.Context) (report.Kind, []report.Row, any, error) {
		limit := a.cfg.Reports.AtRiskThreshold
		if atRisk.Flags().Changed("threshold") {
			limit = threshold
		}
		students, err := a.svc.AtRiskStudents(ctx, limit)
		return report.KindStudent, report.Students(students), students, err
	})

	gpa := &cobra.Command{
		Use:   "gpa",
		Short: "Student count per GPA band",
		Args:  cobra.NoArgs,
		RunE: runReport(func(ctx context.Context) (report.Kind, []report.Row, any, error) {
			bands, err := a.svc.GpaDistribution(ctx)
			return report.KindGpaBand, report.Bands(bands), bands, err
		}),
	}

	programmes := &cobra.Command{
		Use:   "programmes",
		Short: "Student count and average GPA per programme",
		Args:  cobra.NoArgs,
		RunE: runReport(func(ctx context.Context) (report.Kind, []report.Row, any, error) {
			summary, err := a.svc.ProgrammeSummary(ctx)
			return report.KindProgramme, report.Programmes(summary), summary, err
		}),
	}

	cmd.AddCommand(top, atRisk, gpa, programmes)
	return cmd
}
