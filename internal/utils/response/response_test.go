package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
)

func TestGeneralError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		wantMsg  string
	}{
		{name: "validation", err: apperr.Invalid("Invalid level"), wantKind: "validation", wantMsg: "Invalid level"},
		{
			name:     "wrapped duplicate",
			err:      apperr.Wrap(apperr.DuplicateKey, "sqlite.CreateStudent", "Student ID already exists", errors.New("UNIQUE")),
			wantKind: "duplicate_key",
			wantMsg:  "sqlite.CreateStudent: Student ID already exists: UNIQUE",
		},
		{name: "plain error", err: errors.New("boom"), wantKind: "unknown", wantMsg: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GeneralError(tt.err)
			assert.Equal(t, StatusError, got.Status)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantMsg, got.Error)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, GeneralError(apperr.Invalid("Invalid level"))))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string]string{"status": "error", "kind": "validation", "error": "Invalid level"}, decoded)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, OK()))
	assert.JSONEq(t, `{"status":"ok"}`, buf.String())
}
