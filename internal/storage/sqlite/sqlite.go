// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver.
//
// Every operation acquires its own connection from the pool and releases it
// before returning, on success and on failure alike. The one exception is a
// store bound to a Batch, which routes every call through that batch's
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Importing the driver package registers the "sqlite3" driver with
	// database/sql; we also use its Error type to spot constraint failures.
	"github.com/mattn/go-sqlite3"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/config"
	"github.com/FrederickAmakye/SMSPlus/internal/storage"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
)

// Columns are listed explicitly, never SELECT *, so Scan's ordering cannot
// drift if a column is added later.
const studentColumns = "id, name, programme, level, score, email, phone, date_added, status"

// sortColumns is the allow-list for ORDER BY. Column names cannot be bound
// as parameters, so only these literals ever reach the query text.
var sortColumns = map[string]string{
	storage.SortScore: "score",
	storage.SortName:  "name",
	storage.SortLevel: "level",
}

// querier is the subset of *sql.Conn and *sql.Tx the queries need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite is the concrete implementation of storage.Storage.
// Db is a connection pool managed by database/sql; tx is set only on the
// copy handed to a Batch callback.
type SQLite struct {
	Db *sql.DB
	tx *sql.Tx
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.StoragePath)
}

// Open opens (creating if needed) the database file at path, applies any
// pending schema migrations, and returns a ready-to-use *SQLite.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create directory: %w", err)
		}
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}

	// sql.Open does NOT open a real connection yet. It only validates the
	// driver name and data source name; migrate makes the first connection.
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the database handle. Batch-bound copies do not own it.
func (s *SQLite) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.Db.Close()
}

// acquire hands out the querier for one operation and a release func the
// caller must defer. Outside a batch this is a dedicated pool connection.
func (s *SQLite) acquire(ctx context.Context, op string) (querier, func(), error) {
	if s.tx != nil {
		return s.tx, func() {}, nil
	}

	conn, err := s.Db.Conn(ctx)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Persistence, op, "acquire connection", err)
	}
	return conn, func() { _ = conn.Close() }, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts a new row into the students table.
//
// Values travel as ? placeholders, never concatenated into the SQL text.
// A primary key collision is reported as apperr.DuplicateKey so the caller
// can pick a new id; every other failure is apperr.Persistence.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(ctx context.Context, st types.Student) error {
	const op = "sqlite.CreateStudent"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer release()

	_, err = q.ExecContext(ctx,
		"INSERT INTO students ("+studentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		st.ID, st.Name, st.Programme, st.Level, st.Score,
		nullable(st.Email), nullable(st.Phone), nullable(st.DateAdded), nullable(st.Status),
	)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			slog.Warn("duplicate student id", slog.String("id", st.ID))
			return apperr.Wrap(apperr.DuplicateKey, op, "Student ID already exists", err)
		}
		slog.Error("failed to create student",
			slog.String("id", st.ID),
			slog.String("error", err.Error()))
		return apperr.Wrap(apperr.Persistence, op, "failed to create student", err)
	}

	slog.Debug("created student", slog.String("id", st.ID))
	return nil
}

// UpdateStudent replaces every mutable column of the row matching st.ID.
// Zero matched rows is not an error.
func (s *SQLite) UpdateStudent(ctx context.Context, st types.Student) error {
	const op = "sqlite.UpdateStudent"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer release()

	// Argument order matches the ? order in the SQL, id last.
	res, err := q.ExecContext(ctx, `
		UPDATE students
		SET name = ?, programme = ?, level = ?, score = ?,
		    email = ?, phone = ?, date_added = ?, status = ?
		WHERE id = ?`,
		st.Name, st.Programme, st.Level, st.Score,
		nullable(st.Email), nullable(st.Phone), nullable(st.DateAdded), nullable(st.Status),
		st.ID,
	)
	if err != nil {
		slog.Error("failed to update student",
			slog.String("id", st.ID),
			slog.String("error", err.Error()))
		return apperr.Wrap(apperr.Persistence, op, "failed to update student "+st.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil {
		slog.Debug("updated student", slog.String("id", st.ID), slog.Int64("rows", n))
	}
	return nil
}

// GetStudents returns every row in the store's natural order.
// Returns an empty slice (not nil) if there are no students.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	return s.queryStudents(ctx, "sqlite.GetStudents",
		"SELECT "+studentColumns+" FROM students")
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudentByID fetches exactly one student row matched by primary key.
//
// QueryRow does not fail when nothing matches; sql.ErrNoRows surfaces only
// from Scan, and is turned into found=false rather than an error.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, bool, error) {
	const op = "sqlite.GetStudentByID"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return types.Student{}, false, err
	}
	defer release()

	st, err := scanStudent(q.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, false, nil
	}
	if err != nil {
		return types.Student{}, false, apperr.Wrap(apperr.Persistence, op,
			"failed to get student with id "+id, err)
	}
	return st, true, nil
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	const op = "sqlite.DeleteStudentByID"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer release()

	if _, err := q.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id); err != nil {
		slog.Error("failed to delete student",
			slog.String("id", id),
			slog.String("error", err.Error()))
		return apperr.Wrap(apperr.Persistence, op, "failed to delete student "+id, err)
	}

	slog.Debug("deleted student", slog.String("id", id))
	return nil
}

// SearchStudents matches query as a literal substring: case-sensitive
// against id, case-insensitive against name. instr is used instead of LIKE
// so "%" and "_" in the query are not wildcards and the id match keeps its
// case.
func (s *SQLite) SearchStudents(ctx context.Context, query string) ([]types.Student, error) {
	return s.queryStudents(ctx, "sqlite.SearchStudents", `
		SELECT `+studentColumns+` FROM students
		WHERE instr(id, ?) > 0
		   OR instr(LOWER(name), LOWER(?)) > 0`,
		query, query)
}

// SortStudents orders every row by an allow-listed field.
func (s *SQLite) SortStudents(ctx context.Context, field, direction string) ([]types.Student, error) {
	const op = "sqlite.SortStudents"

	column, ok := sortColumns[field]
	if !ok {
		return nil, apperr.New(apperr.InvalidArgument, op,
			fmt.Sprintf("invalid sorting field %q", field))
	}

	order := "ASC"
	if strings.EqualFold(direction, storage.DirDesc) {
		order = "DESC"
	}

	return s.queryStudents(ctx, op,
		"SELECT "+studentColumns+" FROM students ORDER BY "+column+" "+order+", id ASC")
}

// FilterStudents returns rows matching every set field of f.
func (s *SQLite) FilterStudents(ctx context.Context, f storage.Filter) ([]types.Student, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + studentColumns + " FROM students WHERE 1=1")

	if f.Programme != "" {
		sb.WriteString(" AND programme = ?")
		args = append(args, f.Programme)
	}
	if f.Level != 0 {
		sb.WriteString(" AND level = ?")
		args = append(args, f.Level)
	}
	if f.Status != "" {
		sb.WriteString(" AND LOWER(status) = LOWER(?)")
		args = append(args, f.Status)
	}

	return s.queryStudents(ctx, "sqlite.FilterStudents", sb.String(), args...)
}

// ListProgrammes returns the distinct programme values, sorted.
func (s *SQLite) ListProgrammes(ctx context.Context) ([]string, error) {
	const op = "sqlite.ListProgrammes"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.QueryContext(ctx, "SELECT DISTINCT programme FROM students ORDER BY programme")
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, op, "query", err)
	}
	defer rows.Close()

	programmes := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, apperr.Wrap(apperr.Persistence, op, "scan row", err)
		}
		programmes = append(programmes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, op, "rows iteration", err)
	}
	return programmes, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// TopPerformers returns the highest scoring students, at most
// storage.TopPerformersLimit of them. The programme filter is an exact,
// case-insensitive match; the level filter is exact. Both are optional and
// combine with AND.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) TopPerformers(ctx context.Context, programme string, level int) ([]types.Student, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + studentColumns + " FROM students WHERE 1=1")

	if programme != "" {
		sb.WriteString(" AND LOWER(programme) = LOWER(?)")
		args = append(args, programme)
	}
	if level != 0 {
		sb.WriteString(" AND level = ?")
		args = append(args, level)
	}

	sb.WriteString(" ORDER BY score DESC, id ASC LIMIT ?")
	args = append(args, storage.TopPerformersLimit)

	return s.queryStudents(ctx, "sqlite.TopPerformers", sb.String(), args...)
}

// AtRisk returns students scoring below threshold, lowest first.
func (s *SQLite) AtRisk(ctx context.Context, threshold float64) ([]types.Student, error) {
	return s.queryStudents(ctx, "sqlite.AtRisk",
		"SELECT "+studentColumns+" FROM students WHERE score < ? ORDER BY score ASC, id ASC",
		threshold)
}

// ─────────────────────────────────────────────────────────────────────────────
// GpaDistribution counts students per GPA band.
//
// The CASE expression yields the band's index into types.GpaBands, so the
// query can order by it and the labels live in one place. GROUP BY only
// produces groups that have members: empty bands are not returned.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GpaDistribution(ctx context.Context) ([]types.GpaBandSummary, error) {
	const op = "sqlite.GpaDistribution"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.QueryContext(ctx, `
		SELECT
			CASE
				WHEN score < 2.0 THEN 0
				WHEN score < 3.0 THEN 1
				WHEN score < 3.7 THEN 2
				ELSE 3
			END AS band,
			COUNT(*) AS total
		FROM students
		GROUP BY band
		ORDER BY band`)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, op, "query", err)
	}
	defer rows.Close()

	results := make([]types.GpaBandSummary, 0, len(types.GpaBands))
	for rows.Next() {
		var band, total int
		if err := rows.Scan(&band, &total); err != nil {
			return nil, apperr.Wrap(apperr.Persistence, op, "scan row", err)
		}
		results = append(results, types.GpaBandSummary{Band: types.GpaBands[band], Count: total})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, op, "rows iteration", err)
	}
	return results, nil
}

// ProgrammeSummary returns the head count and mean score per programme.
func (s *SQLite) ProgrammeSummary(ctx context.Context) ([]types.ProgrammeSummary, error) {
	const op = "sqlite.ProgrammeSummary"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.QueryContext(ctx, `
		SELECT programme, COUNT(*) AS total, AVG(score) AS average_score
		FROM students
		GROUP BY programme
		ORDER BY programme`)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, op, "query", err)
	}
	defer rows.Close()

	results := make([]types.ProgrammeSummary, 0)
	for rows.Next() {
		var ps types.ProgrammeSummary
		if err := rows.Scan(&ps.Programme, &ps.Count, &ps.AverageScore); err != nil {
			return nil, apperr.Wrap(apperr.Persistence, op, "scan row", err)
		}
		results = append(results, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, op, "rows iteration", err)
	}
	return results, nil
}

// Stats computes the dashboard counters in one pass over the table.
func (s *SQLite) Stats(ctx context.Context) (types.Stats, error) {
	const op = "sqlite.Stats"

	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return types.Stats{}, err
	}
	defer release()

	var st types.Stats
	err = q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN LOWER(status) = LOWER(?) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN LOWER(status) = LOWER(?) THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(score), 0)
		FROM students`,
		types.StatusActive, types.StatusInactive,
	).Scan(&st.Total, &st.Active, &st.Inactive, &st.AverageScore)
	if err != nil {
		return types.Stats{}, apperr.Wrap(apperr.Persistence, op, "query", err)
	}
	return st, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch runs fn against a copy of the store bound to one transaction, so a
// bulk operation holds a single connection from start to finish.
//
// A failing statement inside the transaction (e.g. a duplicate id) only
// undoes that statement in SQLite; the rest of the batch stays intact, which
// lets callers absorb per-row failures. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics.
// Calling Batch on an already bound store joins the existing transaction.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Batch(ctx context.Context, fn func(storage.Storage) error) error {
	const op = "sqlite.Batch"

	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Persistence, op, "begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				slog.Error("batch rollback failed", slog.String("error", err.Error()))
			}
		}
	}()

	if err := fn(&SQLite{Db: s.Db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Persistence, op, "commit transaction", err)
	}
	committed = true
	return nil
}

// queryStudents runs a SELECT over studentColumns and scans every row.
func (s *SQLite) queryStudents(ctx context.Context, op, query string, args ...any) ([]types.Student, error) {
	q, release, err := s.acquire(ctx, op)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("student query failed", slog.String("op", op), slog.String("error", err.Error()))
		return nil, apperr.Wrap(apperr.Persistence, op, "query", err)
	}
	// must close rows before the deferred release hands the connection back
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Persistence, op, "scan row", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, op, "rows iteration", err)
	}

	slog.Debug("student query", slog.String("op", op), slog.Int("rows", len(students)))
	return students, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStudent reads one row selected with studentColumns. The optional
// columns may hold NULL, so they pass through sql.NullString.
func scanStudent(r rowScanner) (types.Student, error) {
	var st types.Student
	var email, phone, dateAdded, status sql.NullString
	if err := r.Scan(
		&st.ID,
		&st.Name,
		&st.Programme,
		&st.Level,
		&st.Score,
		&email,
		&phone,
		&dateAdded,
		&status,
	); err != nil {
		return types.Student{}, err
	}

	st.Email = email.String
	st.Phone = phone.String
	st.DateAdded = dateAdded.String
	st.Status = status.String
	return st, nil
}

// nullable stores empty optional fields as NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// isPrimaryKeyViolation reports whether err is SQLite's primary key
// constraint failure.
func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
