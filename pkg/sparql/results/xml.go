package results

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

// SPARQL XML Results Format
// https://www.w3.org/TR/rdf-sparql-XMLres/

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// SerializeXML renders solutions as SPARQL 1.1 XML results
func SerializeXML(solutions []Solution, opts Options) (string, error) {
	varNames := Variables(solutions, opts.Variables)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>` + "\n")
	b.WriteString(`<sparql xmlns="http://www.w3.org/2005/sparql-results#">` + "\n")
	b.WriteString("  <head>\n")
	for _, varName := range varNames {
		b.WriteString(`    <variable name="` + xmlEscape(varName) + `"/>` + "\n")
	}
	b.WriteString("  </head>\n")
	b.WriteString("  <results>\n")

	for _, solution := range solutions {
		b.WriteString("    <result>\n")
		for _, varName := range varNames {
			term, ok := solution.lookup(varName)
			if !ok {
				continue
			}
			b.WriteString(`      <binding name="` + xmlEscape(varName) + `">` + "\n")
			b.WriteString("        " + termToXML(term) + "\n")
			b.WriteString("      </binding>\n")
		}
		b.WriteString("    </result>\n")
	}

	b.WriteString("  </results>\n")
	b.WriteString("</sparql>\n")
	return b.String(), nil
}

func termToXML(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return "<uri>" + xmlEscape(t.IRI()) + "</uri>"

	case *rdf.BlankNode:
		return "<bnode>" + xmlEscape(t.ID()) + "</bnode>"

	case *rdf.Literal:
		var attrs string
		if t.Language() != "" {
			attrs = ` xml:lang="` + xmlEscape(t.Language()) + `"`
			if t.Direction() != rdf.DirectionNone {
				attrs += ` direction="` + xmlEscape(string(t.Direction())) + `"`
			}
		} else if t.Datatype() != nil {
			attrs = ` datatype="` + xmlEscape(t.Datatype().IRI()) + `"`
		}
		return "<literal" + attrs + ">" + xmlEscape(t.Value()) + "</literal>"

	default:
		return "<literal>" + xmlEscape(fmt.Sprint(term)) + "</literal>"
	}
}
