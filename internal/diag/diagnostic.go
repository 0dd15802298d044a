// Package diag defines the diagnostic model shared by the symbol
// pipeline. It owns deterministic, serialisable records and a small
// Bag/Reporter surface; rendering belongs to the CLI layer.
package diag

import "phlox/internal/source"

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is the central finding record.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// WithNote returns a copy carrying one more note.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
