package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FrederickAmakye/SMSPlus/internal/transfer"
)

// ─────────────────────────────────────────────────────────────────────────────
// newImportCmd loads a student CSV. Bad rows are reported and skipped; with
// --errors-out their raw text is also written to an error_row CSV that can be
// fixed and imported again.
//
//	smsplus import students.csv --errors-out rejected.csv
//
// ─────────────────────────────────────────────────────────────────────────────
func newImportCmd(a *app) *cobra.Command {
	var errorsOut string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import students from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := transfer.Import(cmd.Context(), args[0], a.svc)
			if err != nil {
				// Rows before a read failure stay committed; say how many.
				if result.SuccessCount+result.ErrorCount > 0 {
					if perr := printImportResult(cmd.ErrOrStderr(), result); perr != nil {
						return perr
					}
				}
				return err
			}

			if errorsOut != "" && result.ErrorCount > 0 {
				path := transfer.OutputPath(a.cfg.Transfer.ExportDir, errorsOut)
				if err := transfer.ExportImportErrors(path, result); err != nil {
					return err
				}
			}

			return a.emit(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return printImportResult(w, result)
			})
		},
	}

	cmd.Flags().StringVar(&errorsOut, "errors-out", "", "write rejected rows to this CSV file")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export every student to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := a.svc.ListStudents(cmd.Context())
			if err != nil {
				return err
			}

			path := transfer.OutputPath(a.cfg.Transfer.ExportDir, args[0])
			if err := transfer.ExportStudents(path, students); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), map[string]any{"path": path, "rows": len(students)}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Exported %d students to %s\n", len(students), path)
				return err
			})
		},
	}
}
