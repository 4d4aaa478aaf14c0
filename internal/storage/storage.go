// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to hold student records.
//
// The service layer depends only on this interface, so tests and other
// backends can stand in for the SQLite implementation.
package storage

import (
	"context"

	"github.com/FrederickAmakye/SMSPlus/internal/types"
)

// Sortable fields accepted by SortStudents.
const (
	SortScore = "score"
	SortName  = "name"
	SortLevel = "level"
)

// Sort directions. Anything other than DirDesc sorts ascending.
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// TopPerformersLimit caps the top performers report.
const TopPerformersLimit = 10

// Filter narrows a listing. Zero-valued fields are ignored; set fields are
// ANDed together. Programme matches exactly, Status case-insensitively.
type Filter struct {
	Programme string
	Level     int
	Status    string
}

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new row. A duplicate id yields an
	// apperr.DuplicateKey error.
	CreateStudent(ctx context.Context, s types.Student) error

	// UpdateStudent replaces every mutable column of the row with s.ID.
	// Updating an id that does not exist is a no-op.
	UpdateStudent(ctx context.Context, s types.Student) error

	// GetStudents returns every row in the store's natural order.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetStudentByID returns the matching student; found is false when
	// no row has that id.
	GetStudentByID(ctx context.Context, id string) (student types.Student, found bool, err error)

	// DeleteStudentByID removes the row with id. Missing ids are not an error.
	DeleteStudentByID(ctx context.Context, id string) error

	// SearchStudents returns rows whose id contains query (case-sensitive)
	// or whose name contains query (case-insensitive).
	SearchStudents(ctx context.Context, query string) ([]types.Student, error)

	// SortStudents orders all rows by field (SortScore, SortName, SortLevel).
	// Unknown fields yield an apperr.InvalidArgument error.
	SortStudents(ctx context.Context, field, direction string) ([]types.Student, error)

	// FilterStudents returns rows matching every set field of f.
	FilterStudents(ctx context.Context, f Filter) ([]types.Student, error)

	// ListProgrammes returns the distinct programme values, sorted.
	ListProgrammes(ctx context.Context) ([]string, error)

	// TopPerformers returns up to TopPerformersLimit rows by score
	// descending. An empty programme or zero level disables that filter.
	TopPerformers(ctx context.Context, programme string, level int) ([]types.Student, error)

	// AtRisk returns rows with score below threshold, lowest first.
	AtRisk(ctx context.Context, threshold float64) ([]types.Student, error)

	// GpaDistribution counts rows per GPA band. Empty bands are omitted.
	GpaDistribution(ctx context.Context) ([]types.GpaBandSummary, error)

	// ProgrammeSummary counts rows and averages scores per programme.
	ProgrammeSummary(ctx context.Context) ([]types.ProgrammeSummary, error)

	// Stats returns dashboard counters.
	Stats(ctx context.Context) (types.Stats, error)

	// Batch runs fn against a Storage bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Batch(ctx context.Context, fn func(Storage) error) error

	// Close releases the underlying database handle.
	Close() error
}
