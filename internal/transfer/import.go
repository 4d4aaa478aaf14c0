package transfer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/logging"
	"github.com/FrederickAmakye/SMSPlus/internal/report"
	"github.com/FrederickAmakye/SMSPlus/internal/service"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
)

// Creator persists one imported student. *service.Service satisfies it.
type Creator interface {
	CreateStudent(ctx context.Context, st *types.Student) error
}

// Columns an import file must name in its header. Order in the file is free.
var requiredColumns = []string{"id", "name", "programme", "level", "score"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ─────────────────────────────────────────────────────────────────────────────
// Import reads the student CSV at path into svc.
//
// The whole file is processed inside one svc.Batch, so a single database
// connection serves every row. Rejected rows do not stop the import or roll
// anything back. A read failure part way through ends the import with an
// apperr.IO error; rows created before it are still committed and counted
// in the returned result.
// ─────────────────────────────────────────────────────────────────────────────
func Import(ctx context.Context, path string, svc *service.Service) (types.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.ImportResult{}, apperr.Wrap(apperr.IO, "transfer.Import", "open file", err)
	}
	defer f.Close()

	var (
		result  types.ImportResult
		readErr error
	)
	err = svc.Batch(ctx, func(tx *service.Service) error {
		result, readErr = ImportFrom(ctx, f, tx)
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, readErr
}

// ImportFrom reads a student CSV from r and hands every row to c.
//
// The header is matched by name (trimmed, case-insensitive, leading BOM
// ignored) and may carry extra columns. A header missing any required
// column fails with apperr.Validation before any row is read. Each row is
// parsed and passed to c.CreateStudent; any failure is recorded in the
// result with the row's raw CSV text and the import moves on.
func ImportFrom(ctx context.Context, r io.Reader, c Creator) (types.ImportResult, error) {
	const op = "transfer.ImportFrom"

	result := types.ImportResult{RunID: uuid.NewString()}
	log := logging.WithFields("run_id", result.RunID)
	log.Info("import started")

	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, apperr.Invalid("CSV file is empty")
	}
	if err != nil {
		return result, apperr.Wrap(apperr.IO, op, "read header", err)
	}

	cols := indexHeader(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return result, apperr.Invalid(fmt.Sprintf("CSV header is missing column %q", name))
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("import aborted",
				"success", result.SuccessCount,
				"errors", result.ErrorCount,
				"error", err)
			return result, apperr.Wrap(apperr.IO, op, "read row", err)
		}

		line, _ := reader.FieldPos(0)
		st, err := cols.student(record)
		if err == nil {
			err = c.CreateStudent(ctx, &st)
		}
		if err != nil {
			log.Warn("row rejected", "line", line, "reason", err)
			result.AddError(line, rawRow(record), err.Error())
			continue
		}
		result.AddSuccess()
	}

	log.Info("import finished",
		"success", result.SuccessCount,
		"errors", result.ErrorCount)
	return result, nil
}

// ExportImportErrors writes the raw text of rejected rows as an error log.
func ExportImportErrors(path string, result types.ImportResult) error {
	return Export(path, report.KindImportError, report.ImportErrors(result.ErrorRows))
}

// columns maps a lower-cased header name to its position.
type columns map[string]int

func indexHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

// value returns the trimmed field for name, or "" when the header lacks the
// column or the row is too short to reach it.
func (c columns) value(record []string, name string) (string, bool) {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

// student builds a candidate record from one CSV row. Validation is left to
// the Creator.
func (c columns) student(record []string) (types.Student, error) {
	for _, name := range requiredColumns {
		if _, ok := c.value(record, name); !ok {
			return types.Student{}, apperr.Invalid(fmt.Sprintf("missing value for column %q", name))
		}
	}

	get := func(name string) string {
		v, _ := c.value(record, name)
		return v
	}

	level, err := strconv.Atoi(get("level"))
	if err != nil {
		return types.Student{}, apperr.Invalid(fmt.Sprintf("invalid level %q", get("level")))
	}
	score, err := strconv.ParseFloat(get("score"), 64)
	if err != nil {
		return types.Student{}, apperr.Invalid(fmt.Sprintf("invalid score %q", get("score")))
	}

	return types.Student{
		ID:        get("id"),
		Name:      get("name"),
		Programme: get("programme"),
		Level:     level,
		Score:     score,
		Email:     get("email"),
		Phone:     get("phone"),
		DateAdded: get("date_added"),
		Status:    get("status"),
	}, nil
}

// rawRow re-encodes record as a single CSV line without the line ending.
func rawRow(record []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(record)
	w.Flush()
	return strings.TrimRight(buf.String(), "\r\n")
}

// skipBOM drops a leading UTF-8 byte order mark, as written by Excel.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
