// Package results renders solution mappings in the SPARQL 1.1 result
// formats (JSON, XML, CSV, TSV) and a human-readable debug form.
package results

import (
	"sort"
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

// ErrUnsupportedFormat is returned for an unknown output format
var ErrUnsupportedFormat = errors.New("unsupported result format")

// Solution is one row of variable bindings. Unbound variables are absent
// or nil.
type Solution map[string]rdf.Term

// Format is an output encoding
type Format string

const (
	FormatJSON   Format = "json"
	FormatXML    Format = "xml"
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatTurtle Format = "turtle"
)

// ParseFormat resolves a format name or media type
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "application/sparql-results+json", "application/json":
		return FormatJSON, nil
	case "xml", "application/sparql-results+xml", "application/xml", "text/xml":
		return FormatXML, nil
	case "csv", "text/csv":
		return FormatCSV, nil
	case "tsv", "text/tab-separated-values":
		return FormatTSV, nil
	case "turtle", "ttl", "text/turtle", "text/plain":
		return FormatTurtle, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", name)
	}
}

// NegotiateFormat picks a format from an Accept header, defaulting to JSON
func NegotiateFormat(acceptHeader string) Format {
	accept := strings.ToLower(acceptHeader)

	switch {
	case strings.Contains(accept, "application/sparql-results+xml"):
		return FormatXML
	case strings.Contains(accept, "application/sparql-results+json"):
		return FormatJSON
	case strings.Contains(accept, "text/csv"):
		return FormatCSV
	case strings.Contains(accept, "text/tab-separated-values"):
		return FormatTSV
	case strings.Contains(accept, "text/turtle"), strings.Contains(accept, "text/plain"):
		return FormatTurtle
	case strings.Contains(accept, "application/json"):
		return FormatJSON
	case strings.Contains(accept, "text/xml"), strings.Contains(accept, "application/xml"):
		return FormatXML
	default:
		return FormatJSON
	}
}

// ContentType returns the media type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/sparql-results+json; charset=utf-8"
	case FormatXML:
		return "application/sparql-results+xml; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options controls serialization
type Options struct {
	// Variables fixes the output columns and their order. When empty the
	// union of bound variable names is used, sorted alphabetically.
	Variables []string

	// Pretty indents JSON output
	Pretty bool

	// Indent is the number of spaces per JSON level when Pretty is set.
	// Zero means 2.
	Indent int
}

func (o Options) indent() string {
	if o.Indent <= 0 {
		return "  "
	}
	return strings.Repeat(" ", o.Indent)
}

// Serialize renders solutions in the given format
func Serialize(solutions []Solution, format Format, opts Options) (string, error) {
	switch format {
	case FormatJSON:
		return SerializeJSON(solutions, opts)
	case FormatXML:
		return SerializeXML(solutions, opts)
	case FormatCSV:
		return SerializeCSV(solutions, opts)
	case FormatTSV:
		return SerializeTSV(solutions, opts)
	case FormatTurtle:
		return SerializeTurtle(solutions, opts)
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", string(format))
	}
}

// Variables returns explicit when it is non-empty, otherwise the sorted
// union of variable names bound in any solution.
func Variables(solutions []Solution, explicit []string) []string {
	if len(explicit) > 0 {
		return append([]string(nil), explicit...)
	}

	varSet := make(map[string]bool)
	varNames := []string{}
	for _, solution := range solutions {
		for varName, term := range solution {
			if rdf.IsNil(term) || varSet[varName] {
				continue
			}
			varSet[varName] = true
			varNames = append(varNames, varName)
		}
	}
	sort.Strings(varNames)
	return varNames
}

// lookup returns the term bound to name, if any. A typed nil pointer
// counts as unbound.
func (s Solution) lookup(name string) (rdf.Term, bool) {
	term, ok := s[name]
	if !ok || rdf.IsNil(term) {
		return nil, false
	}
	return term, true
}
