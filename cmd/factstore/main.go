package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aleksaelezovic/factstore/internal/config"
	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "factstore",
	Short: "factstore - in-process RDF fact store",
	Long: `factstore - an indexed RDF triple store with a SPARQL results encoder.

Available commands:
  serve      - Start the HTTP endpoint
  demo       - Load sample data and run a few matches
  load       - Load N-Triples files into the configured storage
  match      - Match a triple pattern and print the solutions
  transform  - Rewrite <<( s p o )>> triple terms to << s p o >>
  duration   - Parse and canonicalize an xsd duration

Examples:
  factstore serve --addr :8080
  factstore match -d people.nt --s '<http://example.org/alice>' --format csv
  echo 'SELECT * { <<( ?s ?p ?o )>> ?q ?v }' | factstore transform`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file (default ./"+config.DefaultFile+" if present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(durationCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
