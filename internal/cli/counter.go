package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCounterCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counter <name>",
		Short: "Print the value of a system counter",
		Long:  "Print the value of a system counter. Row counters are named after the record type, e.g. Node or Edge.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB(false)
			if err != nil {
				return err
			}
			defer db.Close()
			ctr, err := db.Counters().Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", ctr.Name, ctr.Value)
			return nil
		},
	}
}
