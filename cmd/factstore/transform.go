package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/sparql/tripleterm"
	"github.com/spf13/cobra"
)

var transformCheck bool

var transformCmd = &cobra.Command{
	Use:   "transform [TEXT]",
	Short: "Rewrite <<( s p o )>> triple terms to << s p o >>",
	Long:  "Rewrite triple terms in TEXT, or in standard input when TEXT is omitted.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Wrap(err, "read stdin")
			}
			text = string(data)
		}

		transformer := tripleterm.NewTransformer(tripleterm.WithMaxIterations(cfg.Transform.MaxIterations))

		if transformCheck {
			fmt.Fprintln(cmd.OutOrStdout(), transformer.HasTripleTermSyntax(text))
			return nil
		}

		out, err := transformer.Transform(text)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	transformCmd.Flags().BoolVar(&transformCheck, "check", false, "only report whether the text uses <<( )>> syntax")
}
