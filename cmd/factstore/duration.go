package main

import (
	"fmt"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/spf13/cobra"
)

var durationYearMonth bool

var durationCmd = &cobra.Command{
	Use:   "duration VALUE",
	Short: "Parse and canonicalize an xsd duration",
	Long: `Parse an xsd:dayTimeDuration (default) or, with --year-month, an
xsd:yearMonthDuration. Prints the canonical form and its scalar value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if durationYearMonth {
			d, err := rdf.ParseYearMonthDuration(args[0])
			if err != nil {
				return describeDurationError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d months\n", d, d.TotalMonths())
			return nil
		}

		d, err := rdf.ParseDayTimeDuration(args[0])
		if err != nil {
			return describeDurationError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d ms\n", d, d.Milliseconds())
		return nil
	},
}

func describeDurationError(err error) error {
	var de *rdf.DurationError
	if errors.As(err, &de) {
		return errors.WithHintf(err, "check the %s part near %q", de.Part, de.Token)
	}
	return err
}

func init() {
	durationCmd.Flags().BoolVar(&durationYearMonth, "year-month", false, "parse as xsd:yearMonthDuration")
}
