// Package cli implements the cfdb command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chunger/cfdb"
	"github.com/chunger/cfdb/graph"
	"github.com/chunger/cfdb/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Path       string
	Engine     string
	Verbose    bool

	Config config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the cfdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cfdb",
		Short: "cfdb - column family entity store",
		Long:  "Store and query nodes, edges and string pairs kept in indexed column families.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "cfdb.yaml", "config file")
	cmd.PersistentFlags().StringVarP(&opts.Path, "path", "p", "", "database directory (overrides db.path)")
	cmd.PersistentFlags().StringVar(&opts.Engine, "engine", "", "storage engine: bolt, badger or memory (overrides db.engine)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every database operation")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewCounterCommand(opts))
	cmd.AddCommand(NewIndexCommand(opts))
	cmd.AddCommand(NewKVCommand(opts))
	cmd.AddCommand(NewNodeCommand(opts))
	cmd.AddCommand(NewEdgeCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (opts *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Path != "" {
		cfg.DB.Dir = opts.Path
	}
	if opts.Engine != "" {
		cfg.DB.Engine = opts.Engine
	}
	if opts.Verbose {
		cfg.DB.Verbose = true
		cfg.Logger.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	opts.Config = cfg
	opts.Logger = cfg.Logger.NewLogger(cmd.ErrOrStderr())
	return nil
}

func (opts *RootOptions) dbInfo() config.DB {
	return opts.Config.DB.WithLogger(opts.Logger)
}

// openDB opens the configured database, creating it if create is set.
func (opts *RootOptions) openDB(create bool) (*cfdb.Database, error) {
	var db *cfdb.Database
	var err error
	if create {
		db, err = cfdb.Init(opts.dbInfo(), graph.All)
	} else {
		db, err = cfdb.OpenDB(opts.dbInfo(), graph.All)
	}
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("failed to open database %s", opts.Config.DB.Dir), err)
	}
	return db, nil
}

// withGraph runs f over the opened database and closes it afterwards.
func (opts *RootOptions) withGraph(f func(g *graph.Graph) error) error {
	db, err := opts.openDB(false)
	if err != nil {
		return err
	}
	defer db.Close()
	return f(graph.New(db))
}
