// Package response provides helpers for writing consistent JSON output.
//
// Every command that runs with --json prints through here. Successful
// results are encoded as-is; failures always use the same envelope, so a
// script reading the output can tell them apart by "status".
package response

import (
	"encoding/json"
	"io"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope for error cases:
//
//	{ "status": "error", "kind": "validation", "error": "Invalid email format" }
//
// Kind is the apperr kind name, or "unknown" for errors outside the taxonomy.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON encodes data to w as indented JSON followed by a newline.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// OK is the envelope for commands that have nothing else to report.
func OK() Response {
	return Response{Status: StatusOK}
}

// GeneralError wraps any error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Kind:   apperr.KindOf(err).String(),
		Error:  err.Error(),
	}
}
