package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/idgen"
	"github.com/FrederickAmakye/SMSPlus/internal/storage"
	"github.com/FrederickAmakye/SMSPlus/internal/storage/sqlite"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
	"github.com/FrederickAmakye/SMSPlus/internal/validation"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st, opts...)
}

// sequence returns a generator that hands out ids in order.
func sequence(ids ...string) (func() (string, error), *int) {
	calls := 0
	return func() (string, error) {
		if calls >= len(ids) {
			return "", errors.New("sequence exhausted")
		}
		id := ids[calls]
		calls++
		return id, nil
	}, &calls
}

func newStudent(id, name, programme string, level int, score float64) *types.Student {
	return &types.Student{ID: id, Name: name, Programme: programme, Level: level, Score: score}
}

func TestCreateStudent_GeneratesID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	st := newStudent("", "John Doe", "B.Tech Electrical Engineering", 400, 3.5)
	require.NoError(t, svc.CreateStudent(ctx, st))

	require.Len(t, st.ID, idgen.Length)
	got, found, err := svc.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, *st, got)
}

func TestCreateStudent_KeepsSuppliedID(t *testing.T) {
	ctx := context.Background()
	gen, calls := sequence("SHOULDNOTBEUSED0")
	svc := newTestService(t, WithIDGenerator(gen))

	require.NoError(t, svc.CreateStudent(ctx, newStudent("MYID", "Jane Smith", "B.Tech IT", 100, 3.0)))
	assert.Equal(t, 0, *calls)

	_, found, err := svc.GetStudent(ctx, "MYID")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCreateStudent_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	err := svc.CreateStudent(ctx, newStudent("S1", "John Doe", "B.Tech IT", 100, 9.9))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Equal(t, validation.MsgScoreRange, err.Error())

	// whitespace is not "absent": it reaches validation and fails there
	err = svc.CreateStudent(ctx, newStudent("   ", "John Doe", "B.Tech IT", 100, 3.0))
	assert.EqualError(t, err, validation.MsgIDRequired)

	err = svc.CreateStudent(ctx, nil)
	assert.EqualError(t, err, validation.MsgNilStudent)

	all, err := svc.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateStudent_DuplicateSuppliedID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.CreateStudent(ctx, newStudent("S1", "First", "B.Tech IT", 100, 3.0)))

	err := svc.CreateStudent(ctx, newStudent("S1", "Second", "B.Tech IT", 100, 3.0))
	assert.ErrorIs(t, err, apperr.DuplicateKey)
}

func TestCreateStudent_RetriesGeneratedCollision(t *testing.T) {
	ctx := context.Background()
	gen, calls := sequence("TAKEN00000000000", "FRESH00000000000")
	svc := newTestService(t, WithIDGenerator(gen))

	require.NoError(t, svc.CreateStudent(ctx, newStudent("TAKEN00000000000", "First", "B.Tech IT", 100, 3.0)))

	st := newStudent("", "Second", "B.Tech IT", 100, 3.0)
	require.NoError(t, svc.CreateStudent(ctx, st))
	assert.Equal(t, "FRESH00000000000", st.ID)
	assert.Equal(t, 2, *calls)
}

func TestCreateStudent_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	gen, calls := sequence("TAKEN00000000000", "TAKEN00000000000", "TAKEN00000000000", "FRESH00000000000")
	svc := newTestService(t, WithIDGenerator(gen))

	require.NoError(t, svc.CreateStudent(ctx, newStudent("TAKEN00000000000", "First", "B.Tech IT", 100, 3.0)))

	err := svc.CreateStudent(ctx, newStudent("", "Second", "B.Tech IT", 100, 3.0))
	assert.ErrorIs(t, err, apperr.DuplicateKey)
	assert.Equal(t, maxCreateAttempts, *calls)
}

func TestCreateStudent_GeneratorFailure(t *testing.T) {
	boom := errors.New("entropy unavailable")
	svc := newTestService(t, WithIDGenerator(func() (string, error) { return "", boom }))

	err := svc.CreateStudent(context.Background(), newStudent("", "John Doe", "B.Tech IT", 100, 3.0))
	assert.ErrorIs(t, err, boom)
}

func TestUpdateStudent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	st := newStudent("S1", "John Doe", "B.Tech Electrical Engineering", 400, 3.5)
	require.NoError(t, svc.CreateStudent(ctx, st))

	updated := *st
	updated.Name = "Micheal Jackson"
	require.NoError(t, svc.UpdateStudent(ctx, updated))

	got, _, err := svc.GetStudent(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Micheal Jackson", got.Name)
	assert.Equal(t, st.Score, got.Score)

	bad := updated
	bad.Email = "not-an-email"
	err = svc.UpdateStudent(ctx, bad)
	assert.EqualError(t, err, validation.MsgInvalidEmail)

	got, _, err = svc.GetStudent(ctx, "S1")
	require.NoError(t, err)
	assert.Empty(t, got.Email)
}

func TestDeleteStudent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.CreateStudent(ctx, newStudent("S1", "Anonymous", "B.Tech IT", 400, 3.5)))
	require.NoError(t, svc.DeleteStudent(ctx, "S1"))

	_, found, err := svc.GetStudent(ctx, "S1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearchStudents(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.CreateStudent(ctx, newStudent("", "John Doe", "B.Tech IT", 100, 3.0)))
	require.NoError(t, svc.CreateStudent(ctx, newStudent("", "Jane Smith", "B.Tech IT", 100, 3.5)))

	got, err := svc.SearchStudents(ctx, "john")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "John Doe", got[0].Name)

	for _, q := range []string{"", "   ", "\t"} {
		_, err := svc.SearchStudents(ctx, q)
		assert.ErrorIs(t, err, apperr.Validation)
		assert.EqualError(t, err, "Search query cannot be empty")
	}
}

func TestSorts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.CreateStudent(ctx, newStudent("A", "Zed", "B.Tech IT", 300, 2.0)))
	require.NoError(t, svc.CreateStudent(ctx, newStudent("B", "Amy", "B.Tech IT", 100, 3.8)))

	byScore, err := svc.SortByScore(ctx, "desc")
	require.NoError(t, err)
	assert.Equal(t, 3.8, byScore[0].Score)

	byName, err := svc.SortByName(ctx, "asc")
	require.NoError(t, err)
	assert.Equal(t, "Amy", byName[0].Name)

	byLevel, err := svc.SortByLevel(ctx, "desc")
	require.NoError(t, err)
	assert.Equal(t, 300, byLevel[0].Level)
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	a := newStudent("A", "Student A", "B.Tech IT", 100, 3.9)
	a.Status = types.StatusActive
	b := newStudent("B", "Student B", "B.Tech Computer Engineering", 200, 2.5)
	b.Status = types.StatusInactive
	require.NoError(t, svc.CreateStudent(ctx, a))
	require.NoError(t, svc.CreateStudent(ctx, b))

	got, err := svc.FilterByProgramme(ctx, "B.Tech IT")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)

	got, err = svc.FilterByStatus(ctx, "INACTIVE")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].ID)

	got, err = svc.FilterByLevel(ctx, 200)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].ID)

	got, err = svc.Filter(ctx, storage.Filter{Programme: "B.Tech IT", Status: "inactive"})
	require.NoError(t, err)
	assert.Empty(t, got)

	programmes, err := svc.ListProgrammes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B.Tech Computer Engineering", "B.Tech IT"}, programmes)
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, st := range []*types.Student{
		newStudent("A", "Student A", "B.Tech IT", 100, 3.9),
		newStudent("B", "Student B", "B.Tech IT", 100, 3.5),
		newStudent("C", "Student C", "B.Tech Computer Engineering", 200, 2.8),
		newStudent("D", "Student D", "B.Tech Computer Engineering", 200, 1.5),
		newStudent("E", "Student E", "B.Tech Electrical Engineering", 300, 2.0),
	} {
		require.NoError(t, svc.CreateStudent(ctx, st))
	}

	top, err := svc.TopPerformers(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, top, 5)
	assert.Equal(t, "A", top[0].ID)

	atRisk, err := svc.AtRiskStudents(ctx, 2.0)
	require.NoError(t, err)
	require.Len(t, atRisk, 1)
	assert.Equal(t, "D", atRisk[0].ID)

	// a stricter threshold from config widens the report
	atRisk, err = svc.AtRiskStudents(ctx, 3.0)
	require.NoError(t, err)
	assert.Len(t, atRisk, 3)

	dist, err := svc.GpaDistribution(ctx)
	require.NoError(t, err)
	assert.Len(t, dist, 4)

	summary, err := svc.ProgrammeSummary(ctx)
	require.NoError(t, err)
	assert.Len(t, summary, 3)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.InDelta(t, 2.74, stats.AverageScore, 1e-9)
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.CreateStudent(ctx, newStudent("DUP", "Existing", "B.Tech IT", 100, 3.0)))

	var dupErr error
	err := svc.Batch(ctx, func(tx *Service) error {
		require.NoError(t, tx.CreateStudent(ctx, newStudent("", "Generated", "B.Tech IT", 100, 3.0)))
		dupErr = tx.CreateStudent(ctx, newStudent("DUP", "Clash", "B.Tech IT", 100, 3.0))
		return tx.CreateStudent(ctx, newStudent("N2", "After clash", "B.Tech IT", 100, 3.0))
	})
	require.NoError(t, err)
	assert.ErrorIs(t, dupErr, apperr.DuplicateKey)

	all, err := svc.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
