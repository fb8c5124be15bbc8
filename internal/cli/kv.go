package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chunger/cfdb"
)

func NewKVCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Read and write free-form string pairs",
	}
	cmd.AddCommand(newKVPutCommand(opts))
	cmd.AddCommand(newKVGetCommand(opts))
	cmd.AddCommand(newKVDeleteCommand(opts))
	cmd.AddCommand(newKVListCommand(opts))
	return cmd
}

func withPairs(opts *RootOptions, f func(pairs *cfdb.Operations[string, *cfdb.Pair]) error) error {
	db, err := opts.openDB(false)
	if err != nil {
		return err
	}
	defer db.Close()
	return f(cfdb.Pairs(db))
}

func newKVPutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <value>",
		Short: "Store value under name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPairs(opts, func(pairs *cfdb.Operations[string, *cfdb.Pair]) error {
				_, err := pairs.Put(&cfdb.Pair{Name: args[0], Value: args[1]})
				return err
			})
		},
	}
}

func newKVGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print the value stored under name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPairs(opts, func(pairs *cfdb.Operations[string, *cfdb.Pair]) error {
				p, found, err := pairs.Get(pairs.ID(args[0]))
				if err != nil {
					return err
				}
				if !found {
					notFound(cmd.OutOrStdout(), "%s not found", args[0])
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Value)
				return nil
			})
		},
	}
}

func newKVDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove the pair stored under name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPairs(opts, func(pairs *cfdb.Operations[string, *cfdb.Pair]) error {
				deleted, err := pairs.DeleteID(pairs.ID(args[0]))
				if err != nil {
					return err
				}
				if !deleted {
					notFound(cmd.OutOrStdout(), "%s not found", args[0])
				}
				return nil
			})
		},
	}
}

func newKVListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List pairs whose name starts with prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefix string
			if len(args) > 0 {
				prefix = args[0]
			}
			return withPairs(opts, func(pairs *cfdb.Operations[string, *cfdb.Pair]) error {
				var rows [][]string
				err := cfdb.ListPairs(pairs, prefix, func(p *cfdb.Pair) bool {
					rows = append(rows, []string{p.Name, p.Value})
					return true
				})
				if err != nil {
					return err
				}
				return writeTable(cmd.OutOrStdout(), []string{"name", "value"}, rows)
			})
		},
	}
}
