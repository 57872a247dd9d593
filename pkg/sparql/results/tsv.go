package results

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

// SPARQL TSV Results Format
// https://www.w3.org/TR/sparql11-results-csv-tsv/

// SerializeTSV renders solutions as TSV. The header carries ?-prefixed
// variable names and terms use their N-Triples form.
func SerializeTSV(solutions []Solution, opts Options) (string, error) {
	varNames := Variables(solutions, opts.Variables)

	var builder strings.Builder
	for i, varName := range varNames {
		if i > 0 {
			builder.WriteString("\t")
		}
		builder.WriteString("?" + varName)
	}
	builder.WriteString("\n")

	for _, solution := range solutions {
		for i, varName := range varNames {
			if i > 0 {
				builder.WriteString("\t")
			}
			if term, ok := solution.lookup(varName); ok {
				builder.WriteString(termToTSVValue(term))
			}
		}
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func termToTSVValue(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode, *rdf.BlankNode, *rdf.Literal:
		return t.String()
	default:
		return `"` + rdf.EscapeString(fmt.Sprint(term)) + `"`
	}
}
