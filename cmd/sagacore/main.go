// SagaCore is an event-driven engine for text adventures.
// Usage: sagacore [flags] [adventure]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/nathoo/sagacore/cli"
	"github.com/nathoo/sagacore/config"
	"github.com/nathoo/sagacore/engine"
	"github.com/nathoo/sagacore/loader"
	"github.com/nathoo/sagacore/logger"
	"github.com/nathoo/sagacore/storage"
	"github.com/nathoo/sagacore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	plain   bool
	trace   bool
	script  string
	export  string
	version bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags overlays command-line flags on cfg. Defaults come from the
// environment, so an unset flag keeps the environment's value.
func parseFlags(cfg *config.Config, args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("sagacore", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sagacore [flags] [adventure.json|adventure.yaml|adventure.lua|dir]\n")
		fs.PrintDefaults()
	}
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.BoolVar(&opts.plain, "plain", false, "use the line-oriented interface")
	fs.BoolVar(&opts.trace, "trace", false, "print events after every turn")
	fs.StringVar(&opts.script, "script", "", "read commands from `file` and echo them")
	fs.StringVar(&opts.export, "export", "", "write the loaded adventure to `file` and exit")
	fs.StringVar(&cfg.Adventure, "adventure", cfg.Adventure, "adventure `path`")
	fs.BoolVar(&cfg.DemoFallback, "demo", cfg.DemoFallback, "play the built-in demo if the adventure cannot be loaded")
	fs.StringVar(&cfg.Dispatch, "dispatch", cfg.Dispatch, "command dispatch `mode` (broadcast or chain)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (0 keeps the adventure's)")
	fs.StringVar(&cfg.SaveBackend, "save-backend", cfg.SaveBackend, "save store (file, redis or sqlite)")
	fs.StringVar(&cfg.SaveDir, "save-dir", cfg.SaveDir, "directory for file saves")
	fs.StringVar(&cfg.PlayerName, "name", cfg.PlayerName, "player name")
	fs.IntVar(&cfg.WrapWidth, "width", cfg.WrapWidth, "wrap width for plain output, 0 disables")
	fs.Func("disable", "comma-separated `systems` to switch off (e.g. combat,ambient)", func(s string) error {
		cfg.DisabledSystems = strings.Split(s, ",")
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		cfg.Adventure = fs.Arg(0)
	}
	return opts, cfg.Validate()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := parseFlags(cfg, os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Printf("sagacore %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	log, closer := logger.Setup(cfg, os.Stderr)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := loader.LoadOrDemo(cfg.Adventure, cfg.DemoFallback, log)
	if err != nil {
		return errors.Wrap(err, "loading adventure")
	}
	if cfg.PlayerName != "" {
		w.Player.Name = cfg.PlayerName
	}
	log.Info("adventure loaded", "id", w.ID, "rooms", len(w.Rooms), "items", len(w.Items), "monsters", len(w.Monsters))

	if opts.export != "" {
		return loader.WriteFile(opts.export, w)
	}

	engineOpts := cfg.Engine()
	engineOpts.Logger = log
	eng, err := engine.New(w, engineOpts)
	if err != nil {
		return err
	}

	// A broken save backend disables saving but not play.
	store, err := storage.Open(ctx, cfg.Storage(), log)
	if err != nil {
		log.Warn("saving disabled", "backend", cfg.SaveBackend, "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			return errors.Wrap(err, "opening script")
		}
		defer f.Close()
		c := newCLI(eng, store, log, cfg, opts)
		c.In = f
		c.EchoInput = true
		c.Run(ctx)
		return nil
	}

	if opts.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		newCLI(eng, store, log, cfg, opts).Run(ctx)
		return nil
	}

	return tui.Run(ctx, eng, store, log)
}

func newCLI(eng *engine.Engine, store storage.Store, log *slog.Logger, cfg *config.Config, opts options) *cli.CLI {
	c := cli.New(eng, store, log)
	c.Width = cfg.WrapWidth
	c.Trace = opts.trace
	return c
}
