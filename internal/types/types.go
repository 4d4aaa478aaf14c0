// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// storage, service, transfer and the CLI can all import types without
// depending on each other.
package types

// Student represents a student record in our system.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     controls how the field appears in JSON output.
//  2. db:"..."       documents the column the field is stored in.
//  3. validate:"..." rules checked by the go-playground/validator package.
//     Fields are validated in declaration order, so the order below is
//     also the order in which validation failures are reported.
type Student struct {
	ID        string  `json:"id"         db:"id"         validate:"nonblank"`
	Name      string  `json:"name"       db:"name"       validate:"nonblank"`
	Programme string  `json:"programme"  db:"programme"  validate:"nonblank"`
	Level     int     `json:"level"      db:"level"      validate:"gt=0"`
	Score     float64 `json:"score"      db:"score"      validate:"gte=0,lte=4"`
	Email     string  `json:"email"      db:"email"      validate:"looseemail"`
	Phone     string  `json:"phone"      db:"phone"`
	DateAdded string  `json:"date_added" db:"date_added"`
	Status    string  `json:"status"     db:"status"`
}

// Conventional values for Student.Status. They are not enforced.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// GPA band labels, lowest band first.
const (
	BandBelow2 = "Below 2.0"
	Band2To299 = "2.0 - 2.99"
	Band3To369 = "3.0 - 3.69"
	Band37To4  = "3.7 - 4.0"
	bandCount  = 4
)

// GpaBands lists the band labels in ascending order.
var GpaBands = [bandCount]string{BandBelow2, Band2To299, Band3To369, Band37To4}

// GpaBandSummary is one row of the GPA distribution report.
type GpaBandSummary struct {
	Band  string `json:"band"`
	Count int    `json:"total_students"`
}

// ProgrammeSummary is one row of the programme summary report.
type ProgrammeSummary struct {
	Programme    string  `json:"programme"`
	Count        int     `json:"total_students"`
	AverageScore float64 `json:"average_score"`
}

// Stats are the headline numbers shown on the dashboard.
type Stats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	Inactive     int     `json:"inactive"`
	AverageScore float64 `json:"average_score"`
}

// RowFailure describes one CSV row that could not be imported.
type RowFailure struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// ImportResult accumulates the outcome of a bulk import. It is never persisted.
type ImportResult struct {
	RunID        string       `json:"run_id"`
	SuccessCount int          `json:"success_count"`
	ErrorCount   int          `json:"error_count"`
	ErrorRows    []string     `json:"error_rows"`
	Failures     []RowFailure `json:"failures"`
}

// AddSuccess records a successfully imported row.
func (r *ImportResult) AddSuccess() {
	r.SuccessCount++
}

// AddError records a failed row, keeping its raw text in input order.
func (r *ImportResult) AddError(line int, raw, reason string) {
	r.ErrorCount++
	r.ErrorRows = append(r.ErrorRows, raw)
	r.Failures = append(r.Failures, RowFailure{Line: line, Raw: raw, Reason: reason})
}
