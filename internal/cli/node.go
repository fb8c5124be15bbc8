package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chunger/cfdb/graph"
)

func NewNodeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage graph nodes",
	}
	cmd.AddCommand(newNodePutCommand(opts))
	cmd.AddCommand(newNodeGetCommand(opts))
	cmd.AddCommand(newNodeDeleteCommand(opts))
	cmd.AddCommand(newNodeListCommand(opts))
	cmd.AddCommand(newNodeByNameCommand(opts))
	cmd.AddCommand(newNodeByTypeCommand(opts))
	cmd.AddCommand(newNodeFirstCommand(opts))
	cmd.AddCommand(newNodeEdgesCommand(opts))
	return cmd
}

func newNodePutCommand(opts *RootOptions) *cobra.Command {
	var id uint64
	var typeName, description string
	cmd := &cobra.Command{
		Use:   "put <name>",
		Short: "Create a node, or replace it when --id is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGraph(func(g *graph.Graph) error {
				n := &graph.Node{ID: id, Name: args[0], Type: typeName, Description: description}
				if _, err := g.SaveNode(n); err != nil {
					return saveError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), graph.FormatNode(n))
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&id, "id", 0, "node id to replace")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "node type (default "+graph.DefaultNodeType+")")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-form description")
	return cmd
}

func newNodeGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withGraph(func(g *graph.Graph) error {
				n, found, err := g.Node(id)
				if err != nil {
					return err
				}
				if !found {
					notFound(cmd.OutOrStdout(), "node %d not found", id)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), graph.FormatNode(n))
				return nil
			})
		},
	}
}

func newNodeDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node and its index entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withGraph(func(g *graph.Graph) error {
				deleted, err := g.Nodes.DeleteID(g.Nodes.ID(id))
				if err != nil {
					return err
				}
				if !deleted {
					notFound(cmd.OutOrStdout(), "node %d not found", id)
				}
				return nil
			})
		},
	}
}

func newNodeListCommand(opts *RootOptions) *cobra.Command {
	var start uint64
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print nodes in id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGraph(func(g *graph.Graph) error {
				return g.Nodes.Visit(g.Nodes.ID(start), graph.NodePrinter(cmd.OutOrStdout(), limit))
			})
		},
	}
	cmd.Flags().Uint64Var(&start, "start", 0, "first node id to print")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of nodes")
	return cmd
}

func newNodeByNameCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "by-name <prefix>",
		Short: "List nodes whose name starts with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGraph(func(g *graph.Graph) error {
				nodes, err := g.NodesByName(args[0], limit)
				if err != nil {
					return err
				}
				return writeTable(cmd.OutOrStdout(), nodeHeaders, nodeRows(nodes))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of nodes")
	return cmd
}

func newNodeByTypeCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "by-type <type>",
		Short: "List nodes of one type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGraph(func(g *graph.Graph) error {
				nodes, err := g.NodesByType(args[0], limit)
				if err != nil {
					return err
				}
				return writeTable(cmd.OutOrStdout(), nodeHeaders, nodeRows(nodes))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of nodes")
	return cmd
}

func newNodeFirstCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "first <name>",
		Short: "Print the node indexed under exactly name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGraph(func(g *graph.Graph) error {
				n, found, err := g.NodeNamed(args[0])
				if err != nil {
					return err
				}
				if !found {
					notFound(cmd.OutOrStdout(), "no node named %q", args[0])
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), graph.FormatNode(n))
				return nil
			})
		},
	}
}

func newNodeEdgesCommand(opts *RootOptions) *cobra.Command {
	var dir string
	var limit int
	cmd := &cobra.Command{
		Use:   "edges <id>",
		Short: "List edges leaving (out) or entering (in) a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withGraph(func(g *graph.Graph) error {
				var edges []*graph.Edge
				switch dir {
				case "out":
					edges, err = g.EdgesFrom(id, limit)
				case "in":
					edges, err = g.EdgesTo(id, limit)
				default:
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid direction %q, want out or in", dir))
				}
				if err != nil {
					return err
				}
				return writeTable(cmd.OutOrStdout(), edgeHeaders, edgeRows(edges))
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "out", "edge direction: out or in")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of edges")
	return cmd
}
