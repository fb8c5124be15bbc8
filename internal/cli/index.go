package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chunger/cfdb"
)

func NewIndexCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect column families",
	}
	cmd.AddCommand(newIndexAllCommand(opts))
	cmd.AddCommand(newIndexDumpCommand(opts))
	cmd.AddCommand(newIndexTypesCommand(opts))
	return cmd
}

func newIndexAllCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every column family with its key count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB(false)
			if err != nil {
				return err
			}
			defer db.Close()
			stats, err := db.Stats()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(stats))
			for _, s := range stats {
				kind := "index"
				if s.System {
					kind = "system"
				}
				rows = append(rows, []string{s.Name, kind, strconv.Itoa(s.Keys)})
			}
			return writeTable(cmd.OutOrStdout(), []string{"column family", "kind", "keys"}, rows)
		},
	}
}

func newIndexDumpCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [cf...]",
		Short: "Dump the raw entries of column families",
		Long:  "Dump the raw entries of the named column families, or of all of them when none is named.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB(false)
			if err != nil {
				return err
			}
			defer db.Close()
			for _, cf := range args {
				if !db.HasColumnFamily(cf) {
					return WrapExitError(ExitCommandError, fmt.Sprintf("unknown column family %q", cf), cfdb.ErrMissingIndex)
				}
			}
			return db.Dump(cmd.OutOrStdout(), args...)
		},
	}
}

func newIndexTypesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered record types and their codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB(false)
			if err != nil {
				return err
			}
			defer db.Close()
			names, codes, err := cfdb.NewRegistry(db).SortedTypeNames()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				notFound(cmd.OutOrStdout(), "no types registered")
				return nil
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, u64(codes[name])})
			}
			return writeTable(cmd.OutOrStdout(), []string{"type", "code"}, rows)
		},
	}
}
