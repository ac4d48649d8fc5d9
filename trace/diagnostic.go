package trace

import "fmt"

// Kind classifies a diagnostic.
type Kind string

// Diagnostic kinds. None of them stops a run.
const (
	KindReferenceWithoutContext Kind = "reference-without-context"
	KindDuplicateRequirement    Kind = "duplicate-requirement"
	KindOversizedMatch          Kind = "oversized-match"
	KindUndefinedRequirement    Kind = "undefined-requirement"
	KindMissingDocument         Kind = "missing-document"
	KindLineTooLong             Kind = "line-too-long"
	KindUnreadableDocument      Kind = "unreadable-document"
	KindPatternError            Kind = "pattern-error"
)

// Kinds lists every diagnostic kind in a stable order.
var Kinds = []Kind{
	KindReferenceWithoutContext,
	KindDuplicateRequirement,
	KindOversizedMatch,
	KindUndefinedRequirement,
	KindMissingDocument,
	KindLineTooLong,
	KindUnreadableDocument,
	KindPatternError,
}

// Diagnostic is one entry of a run's append-only error sequence.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// String returns the message.
func (d Diagnostic) String() string {
	return d.Message
}

// Reportf appends a diagnostic to the index.
func (x *Index) Reportf(kind Kind, format string, args ...any) {
	d := Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
	x.Diagnostics = append(x.Diagnostics, d)
	x.logger.Debug("Diagnostic", "kind", kind, "message", d.Message)
}

// Healthy reports whether the run produced no diagnostics.
func (x *Index) Healthy() bool {
	return len(x.Diagnostics) == 0
}

// DiagnosticsOf returns the diagnostics of one kind, in report order.
func (x *Index) DiagnosticsOf(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range x.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Messages returns the diagnostic messages in report order.
func (x *Index) Messages() []string {
	out := make([]string, len(x.Diagnostics))
	for i, d := range x.Diagnostics {
		out[i] = d.Message
	}
	return out
}
