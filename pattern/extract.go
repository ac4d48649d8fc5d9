package pattern

import (
	"errors"
	"fmt"
	"iter"
)

// MaxCaptureSize is the largest identifier, in bytes, the extractor accepts.
const MaxCaptureSize = 4095

// ErrCaptureTooLarge matches any *CaptureSizeError.
var ErrCaptureTooLarge = errors.New("capture too large")

// CaptureSizeError reports a captured span larger than MaxCaptureSize.
type CaptureSizeError struct {
	Size int
}

func (e *CaptureSizeError) Error() string {
	return fmt.Sprintf("requirement size too big (%d)", e.Size)
}

// Is reports whether target is ErrCaptureTooLarge.
func (e *CaptureSizeError) Is(target error) bool {
	return target == ErrCaptureTooLarge
}

// ExtractFirst applies p to text once and returns the most specific captured
// substring. When erase is true and p matched, rest is text with the whole
// match removed; otherwise rest is text unchanged.
//
// A nil pattern returns an empty id. An oversized capture returns an empty id
// and a *CaptureSizeError; the erase still applies.
func ExtractFirst(p Pattern, text string, erase bool) (id, rest string, err error) {
	if p == nil {
		return "", text, nil
	}

	m, err := p.Find(text)
	if err != nil || m == nil {
		return "", text, err
	}

	rest = text
	if erase {
		if w := m.Whole(); w.Participated() {
			rest = text[:w.Start] + text[w.End:]
		}
	}

	span, ok := m.Preferred()
	if !ok {
		return "", rest, nil
	}
	if span.Len() > MaxCaptureSize {
		return "", rest, &CaptureSizeError{Size: span.Len()}
	}
	return text[span.Start:span.End], rest, nil
}

// Matches yields successive identifiers found in text. After each match the
// span that produced the identifier is cut from a local copy of the text and
// the pattern is applied again, so every step consumes at least one byte.
// A match with no non-empty span ends the sequence. An engine error or an
// oversized capture is yielded once, with an empty id, and ends the sequence.
func Matches(p Pattern, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if p == nil {
			return
		}

		local := text
		for {
			m, err := p.Find(local)
			if err != nil {
				yield("", err)
				return
			}
			if m == nil {
				return
			}

			span, ok := m.Preferred()
			if !ok {
				return
			}
			if span.Len() > MaxCaptureSize {
				yield("", &CaptureSizeError{Size: span.Len()})
				return
			}

			if !yield(local[span.Start:span.End], nil) {
				return
			}
			local = local[:span.Start] + local[span.End:]
		}
	}
}

// ExtractAll collects every identifier yielded by Matches, deduplicated, in
// first-seen order. On error the identifiers collected so far are returned
// together with the error.
func ExtractAll(p Pattern, text string) ([]string, error) {
	var ids []string
	seen := make(map[string]bool)

	for id, err := range Matches(p, text) {
		if err != nil {
			return ids, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
