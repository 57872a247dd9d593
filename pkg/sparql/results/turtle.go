package results

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

// SerializeTurtle renders a debug listing, one block per solution:
//
//	# Solution 1
//	?name = "Alice"
//	?person = <http://example.org/alice>
//
// It is meant for reading, not parsing.
func SerializeTurtle(solutions []Solution, opts Options) (string, error) {
	varNames := Variables(solutions, opts.Variables)

	if len(solutions) == 0 {
		return "# No solutions\n", nil
	}

	var b strings.Builder
	for i, solution := range solutions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "# Solution %d\n", i+1)
		for _, varName := range varNames {
			term, ok := solution.lookup(varName)
			if !ok {
				continue
			}
			b.WriteString("?" + varName + " = " + termToTurtle(term) + "\n")
		}
	}
	return b.String(), nil
}

func termToTurtle(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode, *rdf.BlankNode, *rdf.Literal:
		return t.String()
	default:
		return fmt.Sprint(term)
	}
}
