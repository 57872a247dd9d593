package main

import (
	"fmt"
	"io"

	"github.com/aleksaelezovic/factstore/internal/logger"
	"github.com/aleksaelezovic/factstore/internal/storage"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/aleksaelezovic/factstore/pkg/sparql/results"
	"github.com/aleksaelezovic/factstore/pkg/sparql/tripleterm"
	"github.com/aleksaelezovic/factstore/pkg/store"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Load sample data into an in-memory store and run a few matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout())
	},
}

func runDemo(out io.Writer) error {
	fmt.Fprintln(out, "=== factstore demo ===")

	backend, err := storage.NewMemoryStorage()
	if err != nil {
		return err
	}
	st := store.NewTripleStore(backend, store.WithLogger(logger.Named("store")))
	defer st.Close()

	alice := rdf.MustNamedNode("http://example.org/alice")
	bob := rdf.MustNamedNode("http://example.org/bob")
	note := rdf.MustNamedNode("urn:note:6f1c2a8e-3b4d-4e5f-9a0b-1c2d3e4f5a6b")

	knows := rdf.MustNamedNode("http://xmlns.com/foaf/0.1/knows")
	name := rdf.MustNamedNode("http://xmlns.com/foaf/0.1/name")
	title := rdf.MustNamedNode("http://purl.org/dc/terms/title")
	spent := rdf.MustNamedNode("http://example.org/timeSpent")

	greeting, err := rdf.NewDirLangLiteral("مرحبا", "ar", rdf.DirectionRTL)
	if err != nil {
		return err
	}

	triples := []*rdf.Triple{
		rdf.MustTriple(alice, name, rdf.NewLiteral("Alice")),
		rdf.MustTriple(alice, knows, bob),
		rdf.MustTriple(bob, name, greeting),
		rdf.MustTriple(note, title, rdf.NewLiteral("Meeting notes")),
		rdf.MustTriple(note, spent, rdf.NewDayTimeDurationLiteral(5400000)),
		rdf.MustTriple(alice, knows, bob),
	}

	added, err := st.AddAll(triples)
	if err != nil {
		return err
	}
	count, err := st.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nInserted %d of %d triples (duplicates collapse), store holds %d\n", added, len(triples), count)

	fmt.Fprintln(out, "\nWho does Alice know?")
	matched, err := st.Match(alice, knows, nil)
	if err != nil {
		return err
	}
	solutions := make([]results.Solution, len(matched))
	for i, triple := range matched {
		solutions[i] = results.Solution{"friend": triple.Object()}
	}
	text, err := results.SerializeTurtle(solutions, results.Options{})
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)

	fmt.Fprintln(out, "\nAll names as SPARQL JSON:")
	matched, err = st.Match(nil, name, nil)
	if err != nil {
		return err
	}
	solutions = solutions[:0]
	for _, triple := range matched {
		solutions = append(solutions, results.Solution{"person": triple.Subject(), "name": triple.Object()})
	}
	text, err = results.SerializeJSON(solutions, results.Options{Pretty: true})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)

	fmt.Fprintln(out, "\nSubjects by UUID 6f1c2a8e-3b4d-4e5f-9a0b-1c2d3e4f5a6b:")
	subjects, err := st.FindSubjectsByUUID("6f1c2a8e-3b4d-4e5f-9a0b-1c2d3e4f5a6b")
	if err != nil {
		return err
	}
	for _, subject := range subjects {
		fmt.Fprintf(out, "  %s\n", subject)
	}

	query := "SELECT ?when WHERE { <<( <http://example.org/alice> <http://xmlns.com/foaf/0.1/knows> ?who )>> <http://example.org/since> ?when }"
	rewritten, err := tripleterm.Transform(query)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTriple term rewrite:\n  %s\n  %s\n", query, rewritten)

	d, err := rdf.ParseDayTimeDuration("PT90M")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPT90M canonicalizes to %s (%d ms)\n", d, d.Milliseconds())
	return nil
}
