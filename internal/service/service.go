// Package service is the single entry point the presentation layer uses for
// student records. It sequences validation, id generation and persistence;
// it adds no error translation of its own, so apperr kinds from the lower
// layers reach the caller unchanged.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/idgen"
	"github.com/FrederickAmakye/SMSPlus/internal/storage"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
	"github.com/FrederickAmakye/SMSPlus/internal/validation"
)

// maxCreateAttempts bounds how often CreateStudent draws a fresh id after a
// collision on an id it generated itself.
const maxCreateAttempts = 3

// Service wraps a storage.Storage with the record rules.
type Service struct {
	storage storage.Storage
	newID   func() (string, error)
}

// Option customises a Service.
type Option func(*Service)

// WithIDGenerator replaces idgen.Generate, mostly for tests.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New returns a Service backed by st.
func New(st storage.Storage, opts ...Option) *Service {
	s := &Service{storage: st, newID: idgen.Generate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent assigns an id when st.ID is empty, validates, and persists.
//
// The assigned id is written back into st. When the id was generated here
// and the store reports a collision, a new id is drawn and the insert is
// retried, up to maxCreateAttempts in total. Caller-supplied ids are never
// retried: the DuplicateKey error goes straight back.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Service) CreateStudent(ctx context.Context, st *types.Student) error {
	if st == nil {
		return apperr.Invalid(validation.MsgNilStudent)
	}

	generated := st.ID == ""
	for attempt := 1; ; attempt++ {
		if generated {
			id, err := s.newID()
			if err != nil {
				return err
			}
			st.ID = id
		}

		if err := validation.Student(st); err != nil {
			return err
		}

		err := s.storage.CreateStudent(ctx, *st)
		if err == nil {
			slog.Info("student created", slog.String("id", st.ID))
			return nil
		}
		if !generated || !errors.Is(err, apperr.DuplicateKey) || attempt >= maxCreateAttempts {
			return err
		}
		slog.Warn("generated id collided, retrying",
			slog.String("id", st.ID),
			slog.Int("attempt", attempt))
	}
}

// UpdateStudent validates st and replaces the stored row with the same id.
func (s *Service) UpdateStudent(ctx context.Context, st types.Student) error {
	if err := validation.Student(&st); err != nil {
		return err
	}
	return s.storage.UpdateStudent(ctx, st)
}

// DeleteStudent removes the record with id.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	return s.storage.DeleteStudentByID(ctx, id)
}

// GetStudent returns the record with id; found is false when there is none.
func (s *Service) GetStudent(ctx context.Context, id string) (types.Student, bool, error) {
	return s.storage.GetStudentByID(ctx, id)
}

// ListStudents returns every record.
func (s *Service) ListStudents(ctx context.Context) ([]types.Student, error) {
	return s.storage.GetStudents(ctx)
}

// SearchStudents rejects a blank query, then matches on id and name.
func (s *Service) SearchStudents(ctx context.Context, query string) ([]types.Student, error) {
	if err := validation.Query(query); err != nil {
		return nil, err
	}
	return s.storage.SearchStudents(ctx, query)
}

func (s *Service) SortByScore(ctx context.Context, direction string) ([]types.Student, error) {
	return s.storage.SortStudents(ctx, storage.SortScore, direction)
}

func (s *Service) SortByName(ctx context.Context, direction string) ([]types.Student, error) {
	return s.storage.SortStudents(ctx, storage.SortName, direction)
}

func (s *Service) SortByLevel(ctx context.Context, direction string) ([]types.Student, error) {
	return s.storage.SortStudents(ctx, storage.SortLevel, direction)
}

// Filter returns the records matching every set field of f.
func (s *Service) Filter(ctx context.Context, f storage.Filter) ([]types.Student, error) {
	return s.storage.FilterStudents(ctx, f)
}

// FilterByProgramme matches programme exactly.
func (s *Service) FilterByProgramme(ctx context.Context, programme string) ([]types.Student, error) {
	return s.storage.FilterStudents(ctx, storage.Filter{Programme: programme})
}

// FilterByStatus matches status ignoring case.
func (s *Service) FilterByStatus(ctx context.Context, status string) ([]types.Student, error) {
	return s.storage.FilterStudents(ctx, storage.Filter{Status: status})
}

func (s *Service) FilterByLevel(ctx context.Context, level int) ([]types.Student, error) {
	return s.storage.FilterStudents(ctx, storage.Filter{Level: level})
}

// ListProgrammes returns the distinct programmes currently on record.
func (s *Service) ListProgrammes(ctx context.Context) ([]string, error) {
	return s.storage.ListProgrammes(ctx)
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *Service) TopPerformers(ctx context.Context, programme string, level int) ([]types.Student, error) {
	return s.storage.TopPerformers(ctx, programme, level)
}

// AtRiskStudents returns records scoring below threshold. The threshold is
// supplied by the caller, normally from config.Reports.AtRiskThreshold.
func (s *Service) AtRiskStudents(ctx context.Context, threshold float64) ([]types.Student, error) {
	return s.storage.AtRisk(ctx, threshold)
}

func (s *Service) GpaDistribution(ctx context.Context) ([]types.GpaBandSummary, error) {
	return s.storage.GpaDistribution(ctx)
}

func (s *Service) ProgrammeSummary(ctx context.Context) ([]types.ProgrammeSummary, error) {
	return s.storage.ProgrammeSummary(ctx)
}

func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	return s.storage.Stats(ctx)
}

// Batch runs fn with a Service whose storage is bound to one transaction.
// See storage.Storage.Batch for commit and rollback rules.
func (s *Service) Batch(ctx context.Context, fn func(*Service) error) error {
	return s.storage.Batch(ctx, func(tx storage.Storage) error {
		return fn(&Service{storage: tx, newID: s.newID})
	})
}
