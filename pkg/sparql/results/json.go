package results

import (
	"encoding/json"
	"fmt"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

// SPARQL JSON Results Format
// https://www.w3.org/TR/sparql11-results-json/

// SPARQLResultsJSON represents the JSON format for SPARQL query results
type SPARQLResultsJSON struct {
	Head    ResultHead     `json:"head"`
	Results ResultBindings `json:"results"`
}

// ResultHead contains the variable names
type ResultHead struct {
	Vars []string `json:"vars"`
}

// ResultBindings contains the result bindings
type ResultBindings struct {
	Bindings []map[string]BindingValue `json:"bindings"`
}

// BindingValue represents a single bound value
type BindingValue struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Datatype  string `json:"datatype,omitempty"`
	XMLLang   string `json:"xml:lang,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// SerializeJSON renders solutions as SPARQL 1.1 JSON results
func SerializeJSON(solutions []Solution, opts Options) (string, error) {
	varNames := Variables(solutions, opts.Variables)

	bindings := make([]map[string]BindingValue, 0, len(solutions))
	for _, solution := range solutions {
		binding := make(map[string]BindingValue)
		for _, varName := range varNames {
			if term, ok := solution.lookup(varName); ok {
				binding[varName] = termToBindingValue(term)
			}
		}
		bindings = append(bindings, binding)
	}

	doc := SPARQLResultsJSON{
		Head:    ResultHead{Vars: varNames},
		Results: ResultBindings{Bindings: bindings},
	}

	var data []byte
	var err error
	if opts.Pretty {
		data, err = json.MarshalIndent(doc, "", opts.indent())
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", errors.Wrap(err, "encode json results")
	}
	return string(data), nil
}

// termToBindingValue converts an RDF term to a SPARQL JSON binding value
func termToBindingValue(term rdf.Term) BindingValue {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return BindingValue{Type: "uri", Value: t.IRI()}

	case *rdf.BlankNode:
		return BindingValue{Type: "bnode", Value: t.ID()}

	case *rdf.Literal:
		bv := BindingValue{Type: "literal", Value: t.Value()}
		if t.Language() != "" {
			bv.XMLLang = t.Language()
			bv.Direction = string(t.Direction())
		} else if t.Datatype() != nil {
			bv.Datatype = t.Datatype().IRI()
		}
		return bv

	default:
		return BindingValue{Type: "literal", Value: fmt.Sprint(term)}
	}
}
