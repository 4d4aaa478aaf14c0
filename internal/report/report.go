// Package report turns students and report summaries into table rows.
//
// Every table the application renders or exports is built from Row values.
// A Row is a tagged variant: Kind says which payload is set, and the
// header and CSV record are chosen by switching on Kind rather than on the
// payload's dynamic type.
package report

import (
	"fmt"
	"strconv"

	"github.com/FrederickAmakye/SMSPlus/internal/types"
)

// Kind tags the payload carried by a Row.
type Kind uint8

const (
	KindStudent Kind = iota + 1
	KindGpaBand
	KindProgramme
	KindImportError
)

func (k Kind) String() string {
	switch k {
	case KindStudent:
		return "student"
	case KindGpaBand:
		return "gpa_band"
	case KindProgramme:
		return "programme"
	case KindImportError:
		return "import_error"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Fixed CSV headers, one per Kind.
var (
	StudentHeader     = []string{"id", "name", "programme", "level", "score", "email", "phone", "status"}
	GpaBandHeader     = []string{"band", "total_students"}
	ProgrammeHeader   = []string{"programme", "total_students", "average_score"}
	ImportErrorHeader = []string{"error_row"}
)

// Row is one line of a report. Exactly one payload field is set, the one
// named by Kind.
type Row struct {
	Kind      Kind
	Student   *types.Student
	Band      *types.GpaBandSummary
	Programme *types.ProgrammeSummary
	ErrorRow  string
}

// Header returns the column names for rows of kind k, or nil for an
// unknown kind. The returned slice is a copy.
func Header(k Kind) []string {
	var h []string
	switch k {
	case KindStudent:
		h = StudentHeader
	case KindGpaBand:
		h = GpaBandHeader
	case KindProgramme:
		h = ProgrammeHeader
	case KindImportError:
		h = ImportErrorHeader
	default:
		return nil
	}
	return append([]string(nil), h...)
}

// Record renders r as CSV fields in Header(r.Kind) order. Floats use the
// shortest decimal form that round-trips, independent of locale. A row of
// unknown kind, or one missing its payload, has no record.
func (r Row) Record() []string {
	switch {
	case r.Kind == KindStudent && r.Student != nil:
		s := r.Student
		return []string{
			s.ID,
			s.Name,
			s.Programme,
			strconv.Itoa(s.Level),
			FormatFloat(s.Score),
			s.Email,
			s.Phone,
			s.Status,
		}
	case r.Kind == KindGpaBand && r.Band != nil:
		return []string{r.Band.Band, strconv.Itoa(r.Band.Count)}
	case r.Kind == KindProgramme && r.Programme != nil:
		p := r.Programme
		return []string{p.Programme, strconv.Itoa(p.Count), FormatFloat(p.AverageScore)}
	case r.Kind == KindImportError:
		return []string{r.ErrorRow}
	default:
		return nil
	}
}

// FormatFloat renders f without exponent or trailing zeros.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ── Constructors ─────────────────────────────────────────────────────────────

func Students(students []types.Student) []Row {
	rows := make([]Row, len(students))
	for i := range students {
		rows[i] = Row{Kind: KindStudent, Student: &students[i]}
	}
	return rows
}

func Bands(bands []types.GpaBandSummary) []Row {
	rows := make([]Row, len(bands))
	for i := range bands {
		rows[i] = Row{Kind: KindGpaBand, Band: &bands[i]}
	}
	return rows
}

func Programmes(summaries []types.ProgrammeSummary) []Row {
	rows := make([]Row, len(summaries))
	for i := range summaries {
		rows[i] = Row{Kind: KindProgramme, Programme: &summaries[i]}
	}
	return rows
}

// ImportErrors wraps the raw text of rejected import rows.
func ImportErrors(raw []string) []Row {
	rows := make([]Row, len(raw))
	for i, r := range raw {
		rows[i] = Row{Kind: KindImportError, ErrorRow: r}
	}
	return rows
}
