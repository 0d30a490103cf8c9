package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/facade"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/memory"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/mongo"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/seed"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"github.com/vinicius-lino-figueiredo/bookquery/internal/config"
	"github.com/vinicius-lino-figueiredo/bookquery/internal/logger"
	"github.com/vinicius-lino-figueiredo/bookquery/report"
)

// errWritesDisabled is returned by commands that only write.
var errWritesDisabled = errors.New("writes are disabled, pass --allow-writes")

type app struct {
	v      *viper.Viper
	cfg    config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: config.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "bookreport",
		Short:         "Run the bookstore reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := config.BindFlags(root, a.v); err != nil {
		panic(err)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the reports",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.list()
			},
		},
		&cobra.Command{
			Use:   "run [report...]",
			Short: "Run the named reports, or every report that is not manual",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd.Context(), args...)
			},
		},
		&cobra.Command{
			Use:   "indexes",
			Short: "Create the catalog indexes and list them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd.Context(), "index-title", "index-author-year", "indexes")
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the sample books, or the books of --seed, into the collection",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.seed(cmd.Context())
			},
		},
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	log, err := logger.New(a.stderr, logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) list() error {
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tNAME\tFLAGS\tTITLE")
	for _, r := range report.Catalog() {
		var flags []string
		if r.Mutates {
			flags = append(flags, "writes")
		}
		if r.Manual {
			flags = append(flags, "manual")
		}
		if len(flags) == 0 {
			flags = append(flags, "-")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Section, r.Name, strings.Join(flags, ","), r.Title)
	}
	return w.Flush()
}

func (a *app) run(ctx context.Context, names ...string) error {
	reports, err := report.Select(names...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	f, closeFn, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer a.close(closeFn)

	runner := report.NewRunner(f, a.stdout,
		report.WithAllowWrites(a.cfg.AllowWrites),
		report.WithLogger(a.log),
	)
	return runner.Run(ctx, reports...)
}

func (a *app) seed(ctx context.Context) error {
	if !a.cfg.AllowWrites {
		return errWritesDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	f, closeFn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer a.close(closeFn)

	books, err := a.books(ctx)
	if err != nil {
		return err
	}
	res, err := seed.Insert(ctx, f, books)
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "seeded collection", "inserted", len(res.InsertedIDs))
	_, err = fmt.Fprintf(a.stdout, "inserted %d books\n", len(res.InsertedIDs))
	return err
}

// open returns the facade the reports run against. The memory backend is
// seeded before use.
func (a *app) open(ctx context.Context) (domain.Facade, func(context.Context) error, error) {
	f, closeFn, err := a.connect(ctx)
	if err != nil || a.cfg.Backend != config.BackendMemory {
		return f, closeFn, err
	}

	books, err := a.books(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, err := seed.Insert(ctx, f, books); err != nil {
		return nil, nil, err
	}
	a.log.DebugContext(ctx, "seeded memory collection", "books", len(books))
	return f, closeFn, nil
}

func (a *app) connect(ctx context.Context) (domain.Facade, func(context.Context) error, error) {
	log := a.log.With("backend", a.cfg.Backend)

	if a.cfg.Backend == config.BackendMemory {
		coll, err := memory.NewCollection()
		if err != nil {
			return nil, nil, err
		}
		noop := func(context.Context) error { return nil }
		return facade.NewFacade(coll, facade.WithLogger(log)), noop, nil
	}

	coll, disconnect, err := mongo.Connect(ctx, a.cfg.MongoURI, a.cfg.Database, a.cfg.Collection,
		mongo.WithMaxTime(a.cfg.Timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", a.cfg.Database, err)
	}
	log.DebugContext(ctx, "connected", "database", a.cfg.Database, "collection", a.cfg.Collection)
	return facade.NewFacade(coll, facade.WithLogger(log)), disconnect, nil
}

func (a *app) books(ctx context.Context) ([]domain.BookRecord, error) {
	loader := seed.NewLoader()
	if a.cfg.Seed == "" {
		return loader.Sample(ctx)
	}

	file, err := os.Open(a.cfg.Seed)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return loader.Load(ctx, file)
}

func (a *app) close(closeFn func(context.Context) error) {
	if err := closeFn(context.Background()); err != nil {
		a.log.Warn("closing backend", "error", err)
	}
}
