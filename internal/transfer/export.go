// Package transfer moves student records in and out of CSV files.
//
// Export writes any report.Row table with its fixed header. Import reads a
// student CSV, creating one record per row and collecting the rows that
// fail instead of stopping at the first one.
package transfer

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/report"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
)

// OutputPath places a bare file name inside dir. Names that already carry a
// directory component are returned unchanged.
func OutputPath(dir, name string) string {
	if dir == "" || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(dir, name)
}

// ─────────────────────────────────────────────────────────────────────────────
// Export writes rows to path as CSV: the header for kind, then one record
// per row in input order.
//
// Missing parent directories are created. Every row must be of kind and
// carry its data; otherwise an apperr.InvalidArgument error is raised
// before the file is touched. Any write failure is an apperr.IO error and
// leaves whatever was already written in place.
// ─────────────────────────────────────────────────────────────────────────────
func Export(path string, kind report.Kind, rows []report.Row) (err error) {
	const op = "transfer.Export"

	header := report.Header(kind)
	if header == nil {
		return apperr.New(apperr.InvalidArgument, op, fmt.Sprintf("unknown report kind %s", kind))
	}
	for i, r := range rows {
		if r.Kind != kind {
			return apperr.New(apperr.InvalidArgument, op,
				fmt.Sprintf("row %d is %s, want %s", i, r.Kind, kind))
		}
		if r.Record() == nil {
			return apperr.New(apperr.InvalidArgument, op,
				fmt.Sprintf("row %d has no %s data", i, kind))
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Wrap(apperr.IO, op, "create directory", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return apperr.Wrap(apperr.IO, op, "create file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.IO, op, "close file", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return apperr.Wrap(apperr.IO, op, "write header", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			return apperr.Wrap(apperr.IO, op, "write row", err)
		}
	}

	// csv.Writer buffers; errors from the final flush only show up here.
	w.Flush()
	if err := w.Error(); err != nil {
		return apperr.Wrap(apperr.IO, op, "flush", err)
	}

	slog.Info("exported csv",
		slog.String("path", path),
		slog.String("kind", kind.String()),
		slog.Int("rows", len(rows)))
	return nil
}

// ExportStudents writes students with the student header.
func ExportStudents(path string, students []types.Student) error {
	return Export(path, report.KindStudent, report.Students(students))
}
