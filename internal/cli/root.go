// Package cli implements the autothinker terminal front end on top of the
// submission and collection controllers.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/collection"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/generation"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/shared/paths"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/store"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

// App carries the collaborators shared by every command. Nil fields are
// built from configuration before the first command runs.
type App struct {
	Store     store.Store
	Generator generation.Generator
	Confirmer collection.Confirmer
	Logger    *zap.Logger

	closers []func() error
}

// Close releases whatever the App opened itself
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

type rootFlags struct {
	storeURL      string
	generationURL string
	dbPath        string
	local         bool
	offline       bool
	verbose       bool
}

// NewRootCommand builds the command tree around app
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "autothinker",
		Short: "Generate and manage startup blueprints",
		Long: `autothinker turns a free-text business idea into a startup blueprint
(pitch, value proposition, SWOT analysis and marketing funnel) and manages the
saved collection in the blueprint store.

Blueprints are read from and written to the store service at STORE_URL, or to
a local SQLite file with --db or --local.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.storeURL, "store-url", "", "blueprint store URL (default $STORE_URL)")
	pf.StringVar(&flags.generationURL, "generation-url", "", "generation service URL (default $GENERATION_URL)")
	pf.StringVar(&flags.dbPath, "db", "", "use a local SQLite file instead of the store service")
	pf.BoolVar(&flags.local, "local", false, "use the SQLite file in the per-user data directory")
	pf.BoolVar(&flags.offline, "offline", false, "use the built-in sample generator instead of the generation service")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newGenerateCommand(app),
		newListCommand(app),
		newShowCommand(app),
		newCreateCommand(app),
		newEditCommand(app),
		newDeleteCommand(app),
		newExportCommand(app),
		newInteractiveCommand(app),
	)
	return root
}

func (a *App) init(flags *rootFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if a.Logger == nil {
		// Failures already reach the user as command errors
		logCfg := logging.Config{Level: "error"}
		if flags.verbose {
			logCfg = logging.DevelopmentConfig()
		}
		if a.Logger, err = logging.New(logCfg); err != nil {
			return err
		}
	}

	if a.Store == nil {
		if err := a.openStore(cfg, flags); err != nil {
			return err
		}
	}

	if a.Generator == nil {
		if flags.offline {
			a.Generator = generation.NewFake()
		} else {
			url := cfg.Generation.URL
			if flags.generationURL != "" {
				url = flags.generationURL
			}
			a.Generator = generation.NewClient(generation.Options{
				BaseURL: url,
				Timeout: cfg.Generation.Timeout,
				RPS:     cfg.Generation.RPS,
				Logger:  a.Logger,
			})
		}
	}

	if a.Confirmer == nil {
		a.Confirmer = tui.Confirmer{Accessible: os.Getenv("ACCESSIBLE") != ""}
	}
	return nil
}

func (a *App) openStore(cfg *config.Config, flags *rootFlags) error {
	if flags.local && flags.dbPath == "" {
		path, err := paths.Database()
		if err != nil {
			return err
		}
		flags.dbPath = path
	}
	if flags.dbPath != "" {
		s, err := store.NewSQLiteStore(flags.dbPath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, s.Close)
		a.Store = store.Instrument(s, config.BackendSQLite, nil, a.Logger)
		return nil
	}

	url := cfg.Store.URL
	if flags.storeURL != "" {
		url = flags.storeURL
	}
	s, err := store.NewHTTPStore(store.HTTPOptions{
		BaseURL: url,
		Timeout: cfg.Store.Timeout,
		Retries: cfg.Store.Retries,
		Logger:  a.Logger,
	})
	if err != nil {
		return err
	}
	a.Store = s
	return nil
}

// Execute runs the CLI with os.Args
func Execute(ctx context.Context) int {
	app := &App{}
	defer app.Close()

	root := NewRootCommand(app)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
