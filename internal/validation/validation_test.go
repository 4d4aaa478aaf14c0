package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
)

func validStudent() types.Student {
	return types.Student{
		ID:        "AB12CD34EF56GH78",
		Name:      "John Doe",
		Programme: "B.Tech Electrical Engineering",
		Level:     400,
		Score:     3.5,
		Email:     "valid@gmail.com",
	}
}

func TestStudent_Valid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Student)
	}{
		{name: "fully populated", mutate: func(*types.Student) {}},
		{name: "no email", mutate: func(s *types.Student) { s.Email = "" }},
		{name: "whitespace email counts as blank", mutate: func(s *types.Student) { s.Email = "   " }},
		{name: "score at lower bound", mutate: func(s *types.Student) { s.Score = 0 }},
		{name: "score at upper bound", mutate: func(s *types.Student) { s.Score = 4.0 }},
		{name: "level outside usual set", mutate: func(s *types.Student) { s.Level = 700 }},
		{name: "unusual status", mutate: func(s *types.Student) { s.Status = "Suspended" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStudent()
			tt.mutate(&s)
			assert.NoError(t, Student(&s))
		})
	}
}

func TestStudent_FirstViolationWins(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Student)
		want   string
	}{
		{name: "missing id", mutate: func(s *types.Student) { s.ID = "" }, want: MsgIDRequired},
		{name: "whitespace id", mutate: func(s *types.Student) { s.ID = " \t" }, want: MsgIDRequired},
		{name: "blank name", mutate: func(s *types.Student) { s.Name = "   " }, want: MsgNameRequired},
		{name: "blank programme", mutate: func(s *types.Student) { s.Programme = "" }, want: MsgProgramme},
		{name: "zero level", mutate: func(s *types.Student) { s.Level = 0 }, want: MsgInvalidLevel},
		{name: "negative level", mutate: func(s *types.Student) { s.Level = -100 }, want: MsgInvalidLevel},
		{name: "score too high", mutate: func(s *types.Student) { s.Score = 5.5 }, want: MsgScoreRange},
		{name: "score negative", mutate: func(s *types.Student) { s.Score = -0.1 }, want: MsgScoreRange},
		{name: "email without dot", mutate: func(s *types.Student) { s.Email = "invalid@gmail" }, want: MsgInvalidEmail},
		{name: "email without at", mutate: func(s *types.Student) { s.Email = "invalid.gmail.com" }, want: MsgInvalidEmail},
		{
			name:   "blank id and blank name reports id",
			mutate: func(s *types.Student) { s.ID, s.Name = "", "" },
			want:   MsgIDRequired,
		},
		{
			name:   "bad level and bad score reports level",
			mutate: func(s *types.Student) { s.Level, s.Score = 0, 9.9 },
			want:   MsgInvalidLevel,
		},
		{
			name:   "bad score and bad email reports score",
			mutate: func(s *types.Student) { s.Score, s.Email = 4.1, "nope" },
			want:   MsgScoreRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStudent()
			tt.mutate(&s)

			err := Student(&s)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.Validation)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestStudent_Nil(t *testing.T) {
	err := Student(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Equal(t, MsgNilStudent, err.Error())
}

func TestQuery(t *testing.T) {
	assert.NoError(t, Query("john"))

	for _, q := range []string{"", "   "} {
		err := Query(q)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.Validation)
		assert.Equal(t, "Search query cannot be empty", err.Error())
	}
}
