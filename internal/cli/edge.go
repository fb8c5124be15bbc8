package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chunger/cfdb/graph"
)

func NewEdgeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Manage graph edges",
	}
	cmd.AddCommand(newEdgePutCommand(opts))
	cmd.AddCommand(newEdgeGetCommand(opts))
	cmd.AddCommand(newEdgeDeleteCommand(opts))
	cmd.AddCommand(newEdgeListCommand(opts))
	cmd.AddCommand(newEdgeAssociateCommand(opts))
	return cmd
}

func newEdgePutCommand(opts *RootOptions) *cobra.Command {
	var id uint64
	var typeName, description string
	cmd := &cobra.Command{
		Use:   "put <head-id> <tail-id> <name>",
		Short: "Create an edge between two nodes, or replace it when --id is given",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			head, err := parseID(args[0])
			if err != nil {
				return err
			}
			tail, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.withGraph(func(g *graph.Graph) error {
				e := &graph.Edge{ID: id, Name: args[2], Head: head, Tail: tail, Type: typeName, Description: description}
				if _, err := g.SaveEdge(e); err != nil {
					return saveError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), graph.FormatEdge(e))
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&id, "id", 0, "edge id to replace")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "edge type (default "+graph.DefaultEdgeType+")")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-form description")
	return cmd
}

func newEdgeGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withGraph(func(g *graph.Graph) error {
				e, found, err := g.Edge(id)
				if err != nil {
					return err
				}
				if !found {
					notFound(cmd.OutOrStdout(), "edge %d not found", id)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), graph.FormatEdge(e))
				return nil
			})
		},
	}
}

func newEdgeDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an edge and its index entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withGraph(func(g *graph.Graph) error {
				deleted, err := g.Edges.DeleteID(g.Edges.ID(id))
				if err != nil {
					return err
				}
				if !deleted {
					notFound(cmd.OutOrStdout(), "edge %d not found", id)
				}
				return nil
			})
		},
	}
}

func newEdgeListCommand(opts *RootOptions) *cobra.Command {
	var start uint64
	var limit int
	var typeName string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print edges in id order, or a table of one type with --type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGraph(func(g *graph.Graph) error {
				if typeName != "" {
					edges, err := g.EdgesByType(typeName, limit)
					if err != nil {
						return err
					}
					return writeTable(cmd.OutOrStdout(), edgeHeaders, edgeRows(edges))
				}
				return g.Edges.Visit(g.Edges.ID(start), graph.EdgePrinter(cmd.OutOrStdout(), limit))
			})
		},
	}
	cmd.Flags().Uint64Var(&start, "start", 0, "first edge id to print")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of edges")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "only edges of this type")
	return cmd
}

func newEdgeAssociateCommand(opts *RootOptions) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "associate <head-name> <tail-name> <relation>",
		Short: "Connect two nodes found by name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGraph(func(g *graph.Graph) error {
				e, err := g.Associate(args[0], args[1], args[2], typeName)
				if err != nil {
					return WrapExitError(ExitFailure, "associate failed", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), graph.FormatEdge(e))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "edge type (default "+graph.DefaultEdgeType+")")
	return cmd
}
