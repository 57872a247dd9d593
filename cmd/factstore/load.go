package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load FILE...",
	Short: "Load N-Triples files into the configured storage",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		added, err := loadFiles(st, args)
		if err != nil {
			return err
		}
		count, err := st.Count()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d triples, store now holds %d\n", added, count)
		return nil
	},
}
