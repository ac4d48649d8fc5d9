package export

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/c360studio/reqtrace/trace"
)

const (
	// Namespace is the vocabulary of exported coverage graphs.
	Namespace = "https://reqtrace.dev/ns#"

	// EntityNamespace prefixes requirement and document IRIs.
	EntityNamespace = "https://reqtrace.dev/id/"

	rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	xsdInt  = "http://www.w3.org/2001/XMLSchema#integer"
)

// Triple represents a semantic triple for export. Object is an IRI when
// IsIRI is set, otherwise a literal.
type Triple struct {
	Subject   string
	Predicate string
	Object    any
	IsIRI     bool
}

// defaultPrefixes returns the namespace prefixes for Turtle output, in
// declaration order.
func defaultPrefixes() [][2]string {
	return [][2]string{
		{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
		{"xsd", "http://www.w3.org/2001/XMLSchema#"},
		{"dc", "http://purl.org/dc/terms/"},
		{"rt", Namespace},
	}
}

// requirementIRI converts a requirement id to an IRI.
func requirementIRI(id string) string {
	return EntityNamespace + "requirement/" + url.PathEscape(id)
}

// documentIRI converts a document id to an IRI.
func documentIRI(id string) string {
	return EntityNamespace + "document/" + url.PathEscape(id)
}

// GraphTriples returns the coverage graph behind m: one subject per
// requirement row and one per owning document.
func GraphTriples(x *trace.Index, m Matrix) []Triple {
	var triples []Triple
	add := func(s, p string, o any, iri bool) {
		triples = append(triples, Triple{Subject: s, Predicate: p, Object: o, IsIRI: iri})
	}

	seenDocs := make(map[string]bool)
	var docs []string
	for _, row := range m.Rows {
		r, ok := x.Requirement(row.Requirement)
		if !ok {
			continue
		}
		s := requirementIRI(r.ID)
		add(s, rdfType, Namespace+"Requirement", true)
		add(s, "http://purl.org/dc/terms/identifier", r.ID, false)
		add(s, "http://purl.org/dc/terms/isPartOf", documentIRI(r.DocumentID), true)
		if r.Text != "" {
			add(s, "http://purl.org/dc/terms/description", r.Text, false)
		}
		for _, c := range r.Covers.Sorted() {
			add(s, Namespace+"covers", requirementIRI(c), true)
		}
		for _, c := range r.CoveredBy.Sorted() {
			add(s, Namespace+"coveredBy", requirementIRI(c), true)
		}
		if !seenDocs[r.DocumentID] {
			seenDocs[r.DocumentID] = true
			docs = append(docs, r.DocumentID)
		}
	}

	trace.SortNatural(docs)
	for _, id := range docs {
		d, ok := x.Document(id)
		if !ok {
			continue
		}
		s := documentIRI(d.ID)
		add(s, rdfType, Namespace+"Document", true)
		add(s, "http://purl.org/dc/terms/identifier", d.ID, false)
		for _, u := range d.Upstream.Sorted() {
			add(s, Namespace+"upstream", documentIRI(u), true)
		}
		for _, u := range d.Downstream.Sorted() {
			add(s, Namespace+"downstream", documentIRI(u), true)
		}
		add(s, Namespace+"totalRequirements", d.TotalRequirements, false)
		add(s, Namespace+"coveredRequirements", d.CoveredRequirements, false)
	}

	return triples
}

func writeGraph(w io.Writer, x *trace.Index, m Matrix, format Format) error {
	triples := GraphTriples(x, m)

	var out string
	switch format {
	case FormatTurtle:
		out = toTurtle(triples)
	case FormatNTriples:
		out = toNTriples(triples)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	_, err := io.WriteString(w, out)
	return err
}

// toTurtle serializes to Turtle format, grouping consecutive triples of the
// same subject.
func toTurtle(triples []Triple) string {
	var sb strings.Builder

	for _, p := range defaultPrefixes() {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", p[0], p[1])
	}

	for i, t := range triples {
		if i == 0 || triples[i-1].Subject != t.Subject {
			fmt.Fprintf(&sb, "\n<%s>\n", t.Subject)
		}
		predicate := "<" + t.Predicate + ">"
		if t.Predicate == rdfType {
			predicate = "a"
		}
		fmt.Fprintf(&sb, "    %s %s", predicate, formatObject(t, true))
		if i+1 < len(triples) && triples[i+1].Subject == t.Subject {
			sb.WriteString(" ;\n")
		} else {
			sb.WriteString(" .\n")
		}
	}

	return sb.String()
}

// toNTriples serializes to N-Triples format.
func toNTriples(triples []Triple) string {
	var sb strings.Builder
	for _, t := range triples {
		fmt.Fprintf(&sb, "<%s> <%s> %s .\n", t.Subject, t.Predicate, formatObject(t, false))
	}
	return sb.String()
}

// formatObject formats an object value. Turtle may abbreviate datatypes.
func formatObject(t Triple, turtle bool) string {
	if t.IsIRI {
		return fmt.Sprintf("<%v>", t.Object)
	}
	switch v := t.Object.(type) {
	case int:
		if turtle {
			return fmt.Sprintf("%d", v)
		}
		return fmt.Sprintf("\"%d\"^^<%s>", v, xsdInt)
	case string:
		return fmt.Sprintf("\"%s\"", escapeString(v))
	default:
		return fmt.Sprintf("\"%s\"", escapeString(fmt.Sprint(v)))
	}
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
