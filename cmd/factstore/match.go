package main

import (
	"fmt"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/aleksaelezovic/factstore/pkg/sparql/results"
	"github.com/spf13/cobra"
)

var (
	matchData      []string
	matchSubject   string
	matchPredicate string
	matchObject    string
	matchUUID      string
	matchFormat    string
	matchPretty    bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a triple pattern and print the solutions",
	Long: `Match a triple pattern. Terms use N-Triples syntax, e.g.
  --s '<http://example.org/alice>' --o '"Alice"@en'
Omitted positions are wildcards. --uuid lists subjects whose IRI contains a UUID.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := results.ParseFormat(matchFormat)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := loadFiles(st, matchData); err != nil {
			return err
		}

		var solutions []results.Solution
		var vars []string
		if matchUUID != "" {
			subjects, err := st.FindSubjectsByUUID(matchUUID)
			if err != nil {
				return err
			}
			for _, subject := range subjects {
				solutions = append(solutions, results.Solution{"subject": subject})
			}
			vars = []string{"subject"}
		} else {
			subject, predicate, object, err := parsePattern(matchSubject, matchPredicate, matchObject)
			if err != nil {
				return err
			}
			triples, err := st.Match(subject, predicate, object)
			if err != nil {
				return err
			}
			for _, triple := range triples {
				solutions = append(solutions, results.Solution{
					"s": triple.Subject(),
					"p": triple.Predicate(),
					"o": triple.Object(),
				})
			}
			vars = []string{"s", "p", "o"}
		}

		out, err := results.Serialize(solutions, format, results.Options{
			Variables: vars,
			Pretty:    matchPretty || cfg.Results.Pretty,
			Indent:    cfg.Results.Indent,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// parsePattern parses the N-Triples encoded pattern positions
func parsePattern(s, p, o string) (rdf.Subject, *rdf.NamedNode, rdf.Term, error) {
	var subject rdf.Subject
	var predicate *rdf.NamedNode
	var object rdf.Term

	if s != "" {
		term, err := rdf.ParseTerm(s)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "subject")
		}
		sub, ok := term.(rdf.Subject)
		if !ok {
			return nil, nil, nil, errors.Newf("subject must be an IRI or blank node, got %s", term)
		}
		subject = sub
	}
	if p != "" {
		term, err := rdf.ParseTerm(p)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "predicate")
		}
		node, ok := term.(*rdf.NamedNode)
		if !ok {
			return nil, nil, nil, errors.Newf("predicate must be an IRI, got %s", term)
		}
		predicate = node
	}
	if o != "" {
		term, err := rdf.ParseTerm(o)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "object")
		}
		object = term
	}
	return subject, predicate, object, nil
}

func init() {
	matchCmd.Flags().StringSliceVarP(&matchData, "data", "d", nil, "N-Triples files to load first")
	matchCmd.Flags().StringVar(&matchSubject, "s", "", "subject term")
	matchCmd.Flags().StringVar(&matchPredicate, "p", "", "predicate IRI")
	matchCmd.Flags().StringVar(&matchObject, "o", "", "object term")
	matchCmd.Flags().StringVar(&matchUUID, "uuid", "", "find subjects whose IRI contains this UUID")
	matchCmd.Flags().StringVarP(&matchFormat, "format", "f", "turtle", "output format: json, xml, csv, tsv, turtle")
	matchCmd.Flags().BoolVar(&matchPretty, "pretty", false, "indent JSON output")
}
