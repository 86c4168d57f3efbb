package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/flatdb/chunk"
	"github.com/vegasq/flatdb/internal/config"
	"github.com/vegasq/flatdb/internal/logger"
	"github.com/vegasq/flatdb/shell"
	"github.com/vegasq/flatdb/storage"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags and config are merged
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfgFile   string
	root      string
	db        string
	format    string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:   "flatdb",
		Short: "Flat-file CSV database",
		Long: `flatdb stores tables as CSV files under a root directory, one
directory per database, and queries them with a small command language.

Examples:
  flatdb --root ./data shell
  flatdb --root ./data exec "select name from shop/people where age > 30"
  flatdb --root ./data chunk shop/people --budget 5000 --codec zstd
  flatdb --root ./data export shop/people people.parquet
  flatdb schema people.parquet`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.StringVar(&a.root, "root", defaults.Root, "storage root directory")
	pf.StringVar(&a.db, "db", "", "database to select on start")
	pf.StringVarP(&a.format, "format", "f", defaults.Output.Format, "output format: table, csv, jsonl")
	pf.StringVar(&a.logLevel, "log-level", defaults.Log.Level, "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", defaults.Log.Format, "log format: text, json")

	root.AddCommand(
		a.shellCmd(),
		a.execCmd(),
		a.chunkCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.schemaCmd(),
	)
	return root
}

// setup loads config, lets explicitly set flags win, and installs the logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.cfg = config.DefaultConfig()
	if err := config.Load(config.EnvPrefix, a.cfgFile, a.cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		a.cfg.Root = a.root
	}
	if flags.Changed("format") {
		a.cfg.Output.Format = a.format
	}
	if flags.Changed("log-level") {
		a.cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		a.cfg.Log.Format = a.logFormat
	}

	a.logger = logger.Init(logger.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: a.errOut,
	})
	return nil
}

func (a *app) openStore() (*storage.Store, error) {
	store, err := storage.New(a.cfg.Root,
		storage.WithBatchSize(a.cfg.Query.BatchSize),
		storage.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	if a.db != "" {
		if err := store.Use(a.db); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (a *app) chunkOptions() ([]chunk.Option, error) {
	codec, err := chunk.ParseCodec(a.cfg.Chunk.Codec)
	if err != nil {
		return nil, err
	}
	return []chunk.Option{
		chunk.WithSampleSize(a.cfg.Chunk.SampleSize),
		chunk.WithCodec(codec),
		chunk.WithRepeatHeader(a.cfg.Chunk.RepeatHeader),
		chunk.WithLogger(a.logger),
	}, nil
}

func (a *app) newShell() (*shell.Shell, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	chunkOpts, err := a.chunkOptions()
	if err != nil {
		return nil, err
	}
	return shell.New(store,
		shell.WithFormat(a.cfg.Output.Format),
		shell.WithMemoryBudget(a.cfg.Query.MemoryBudget),
		shell.WithChunkOptions(chunkOpts...),
		shell.WithLogger(a.logger),
	), nil
}
