package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/storage"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
	"github.com/FrederickAmakye/SMSPlus/internal/utils/response"
)

// studentFlags binds the editable fields of a record to command flags.
type studentFlags struct {
	st types.Student
}

func (f *studentFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.st.Name, "name", "", "full name")
	fl.StringVar(&f.st.Programme, "programme", "", "programme of study")
	fl.IntVar(&f.st.Level, "level", 0, "level, e.g. 100, 200, 300, 400")
	fl.Float64Var(&f.st.Score, "score", 0, "GPA between 0.0 and 4.0")
	fl.StringVar(&f.st.Email, "email", "", "email address")
	fl.StringVar(&f.st.Phone, "phone", "", "phone number")
	fl.StringVar(&f.st.Status, "status", types.StatusActive, "status, e.g. Active or Inactive")
	fl.StringVar(&f.st.DateAdded, "date-added", "", "date the record was added (YYYY-MM-DD, left empty when omitted)")
}

// overlay copies every flag the user actually set onto st.
func (f *studentFlags) overlay(cmd *cobra.Command, st *types.Student) {
	changed := cmd.Flags().Changed
	if changed("name") {
		st.Name = f.st.Name
	}
	if changed("programme") {
		st.Programme = f.st.Programme
	}
	if changed("level") {
		st.Level = f.st.Level
	}
	if changed("score") {
		st.Score = f.st.Score
	}
	if changed("email") {
		st.Email = f.st.Email
	}
	if changed("phone") {
		st.Phone = f.st.Phone
	}
	if changed("status") {
		st.Status = f.st.Status
	}
	if changed("date-added") {
		st.DateAdded = f.st.DateAdded
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// newAddCmd creates a student. Without --id a 16-character id is generated.
//
//	smsplus add --name "John Doe" --programme "B.Tech IT" --level 100 --score 3.5
//
// ─────────────────────────────────────────────────────────────────────────────
func newAddCmd(a *app) *cobra.Command {
	var f studentFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := f.st
			if err := a.svc.CreateStudent(cmd.Context(), &st); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), st, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Student %s created.\n", st.ID)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&f.st.ID, "id", "", "student id (generated when empty)")
	f.register(cmd)
	return cmd
}

// newUpdateCmd changes the flags given on the command line and keeps every
// other field of the stored record.
func newUpdateCmd(a *app) *cobra.Command {
	var f studentFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a student record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, found, err := a.svc.GetStudent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return notFound(args[0])
			}

			f.overlay(cmd, &st)
			if err := a.svc.UpdateStudent(cmd.Context(), st); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), st, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Student %s updated.\n", st.ID)
				return err
			})
		},
	}

	f.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeleteStudent(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), response.OK(), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Student %s deleted.\n", args[0])
				return err
			})
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one student record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, found, err := a.svc.GetStudent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return notFound(args[0])
			}
			return a.emit(cmd.OutOrStdout(), st, func(w io.Writer) error {
				return printStudent(w, st)
			})
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// newListCmd lists records, either sorted or filtered.
//
//	smsplus list --sort score --desc
//	smsplus list --programme "B.Tech IT" --status active
//
// Sorting and filtering are separate views and cannot be combined.
// ─────────────────────────────────────────────────────────────────────────────
func newListCmd(a *app) *cobra.Command {
	var (
		sortBy string
		desc   bool
		filter storage.Filter
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List student records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			direction := storage.DirAsc
			if desc {
				direction = storage.DirDesc
			}

			var (
				students []types.Student
				err      error
			)
			switch {
			case sortBy != "":
				switch sortBy {
				case storage.SortScore:
					students, err = a.svc.SortByScore(ctx, direction)
				case storage.SortName:
					students, err = a.svc.SortByName(ctx, direction)
				case storage.SortLevel:
					students, err = a.svc.SortByLevel(ctx, direction)
				default:
					err = apperr.New(apperr.InvalidArgument, "list",
						fmt.Sprintf("invalid sorting field %q", sortBy))
				}
			case filter != (storage.Filter{}):
				students, err = a.svc.Filter(ctx, filter)
			default:
				students, err = a.svc.ListStudents(ctx)
			}
			if err != nil {
				return err
			}
			return a.printStudents(cmd.OutOrStdout(), students)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by score, name or level")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&filter.Programme, "programme", "", "only this programme (exact match)")
	cmd.Flags().IntVar(&filter.Level, "level", 0, "only this level")
	cmd.Flags().StringVar(&filter.Status, "status", "", "only this status (any case)")

	cmd.MarkFlagsMutuallyExclusive("sort", "programme")
	cmd.MarkFlagsMutuallyExclusive("sort", "level")
	cmd.MarkFlagsMutuallyExclusive("sort", "status")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find students by id or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := a.svc.SearchStudents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printStudents(cmd.OutOrStdout(), students)
		},
	}
}

func newProgrammesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "programmes",
		Short: "List the programmes currently on record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			programmes, err := a.svc.ListProgrammes(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), programmes, func(w io.Writer) error {
				for _, p := range programmes {
					if _, err := fmt.Fprintln(w, p); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), stats, func(w io.Writer) error {
				return printStats(w, stats)
			})
		},
	}
}

func notFound(id string) error {
	return apperr.Invalid(fmt.Sprintf("Student %s not found", id))
}
