package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and all of its column families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB(true)
			if err != nil {
				return err
			}
			defer db.Close()
			cfs, err := db.ColumnFamilies()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %d column families)\n",
				color.GreenString("initialized"), db.Path(), db.Engine(), len(cfs))
			return nil
		},
	}
}
