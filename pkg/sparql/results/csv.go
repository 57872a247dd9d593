package results

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

// SPARQL CSV Results Format
// https://www.w3.org/TR/sparql11-results-csv-tsv/

// SerializeCSV renders solutions as CSV with a header row of variable
// names. Fields are quoted per RFC 4180 when needed.
func SerializeCSV(solutions []Solution, opts Options) (string, error) {
	varNames := Variables(solutions, opts.Variables)

	var builder strings.Builder
	w := csv.NewWriter(&builder)
	w.UseCRLF = true

	if err := w.Write(varNames); err != nil {
		return "", errors.Wrap(err, "write csv header")
	}

	row := make([]string, len(varNames))
	for _, solution := range solutions {
		for i, varName := range varNames {
			row[i] = ""
			if term, ok := solution.lookup(varName); ok {
				row[i] = termToCSVValue(term)
			}
		}
		if err := w.Write(row); err != nil {
			return "", errors.Wrap(err, "write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flush csv")
	}
	return builder.String(), nil
}

// termToCSVValue renders IRIs bare, blank nodes as _:id, and literals as
// value, value@lang[--dir] or value^^<datatype>
func termToCSVValue(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return t.IRI()
	case *rdf.BlankNode:
		return "_:" + t.ID()
	case *rdf.Literal:
		return t.Lexical()
	default:
		return fmt.Sprint(term)
	}
}
