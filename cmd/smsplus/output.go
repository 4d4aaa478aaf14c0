package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/FrederickAmakye/SMSPlus/internal/report"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
	"github.com/FrederickAmakye/SMSPlus/internal/utils/response"
)

// emit prints data as JSON under --json, otherwise calls text.
func (a *app) emit(w io.Writer, data any, text func(io.Writer) error) error {
	if a.jsonOut {
		return response.WriteJSON(w, data)
	}
	return text(w)
}

// printTable renders rows as an aligned table headed by report.Header(kind).
func printTable(w io.Writer, kind report.Kind, rows []report.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := report.Header(kind)
	for i, h := range header {
		header[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r.Record(), "\t"))
	}
	return tw.Flush()
}

func (a *app) printStudents(w io.Writer, students []types.Student) error {
	return a.emit(w, students, func(w io.Writer) error {
		return printTable(w, report.KindStudent, report.Students(students))
	})
}

// printStudent shows one record as label/value pairs.
func printStudent(w io.Writer, st types.Student) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, kv := range [][2]string{
		{"ID", st.ID},
		{"Name", st.Name},
		{"Programme", st.Programme},
		{"Level", fmt.Sprint(st.Level)},
		{"GPA", report.FormatFloat(st.Score)},
		{"Email", st.Email},
		{"Phone", st.Phone},
		{"Date added", st.DateAdded},
		{"Status", st.Status},
	} {
		fmt.Fprintf(tw, "%s:\t%s\n", kv[0], kv[1])
	}
	return tw.Flush()
}

func printStats(w io.Writer, s types.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total students:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Active:\t%d\n", s.Active)
	fmt.Fprintf(tw, "Inactive:\t%d\n", s.Inactive)
	fmt.Fprintf(tw, "Average GPA:\t%.2f\n", s.AverageScore)
	return tw.Flush()
}

func printImportResult(w io.Writer, r types.ImportResult) error {
	fmt.Fprintf(w, "Import %s: %d imported, %d failed\n", r.RunID, r.SuccessCount, r.ErrorCount)
	if len(r.Failures) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tREASON\tROW")
	for _, f := range r.Failures {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Line, f.Reason, f.Raw)
	}
	return tw.Flush()
}
