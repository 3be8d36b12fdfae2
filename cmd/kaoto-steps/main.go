package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	app "github.com/kaotoio/kaoto"
	"github.com/kaotoio/kaoto/internal/config"
	"github.com/kaotoio/kaoto/internal/events"
	"github.com/kaotoio/kaoto/internal/flows"
	"github.com/kaotoio/kaoto/internal/snapshot"
	"github.com/kaotoio/kaoto/internal/validate"
	"github.com/kaotoio/kaoto/pkg/log"
)

// session is the collection a single command works on, together with the
// optional snapshot archive fed by it
type session struct {
	cfg   *config.Config
	flows *flows.Collection
	queue *events.Queue
	store snapshot.Store
}

var ErrInvalidConfig = errors.New("invalid configuration")

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:    app.Name,
		Usage:   "Inspect and edit flow step trees",
		Version: app.Version,
		Description: `Reads flows as JSON (from a file or stdin), regenerates their
step identifiers and nested step index, and prints the result.

Examples:
  kaoto-steps regenerate flows.json
  kaoto-steps index --flow route-1 flows.json
  kaoto-steps get --path 1.branches.0.steps.0 flows.json
  kaoto-steps delete --step route-1_choice-1 flows.json`,
		Reader: in,
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "dsl",
				Usage:   "DSL of flows that do not name one",
				EnvVars: []string{"DEFAULT_DSL"},
			},
		},
		Commands: []*cli.Command{
			regenerateCommand,
			indexCommand,
			getCommand,
			deleteCommand,
		},
	}
}

func openSession(c *cli.Context) (*session, error) {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if dsl := c.String("dsl"); dsl != "" {
		cfg.DefaultDSL = dsl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	setupLogging(cfg)

	s := &session{cfg: cfg}
	deps := flows.Dependencies{Validator: validate.New()}
	if cfg.Snapshot.Enabled() {
		store, err := snapshot.Open(contextOf(c), &cfg.Snapshot)
		if err != nil {
			return nil, err
		}
		s.store = store
		s.queue = events.NewQueue(
			snapshot.Archiver(store),
			cfg.Snapshot.BatchSize,
			cfg.Snapshot.Timeout,
		)
		s.queue.Start()
		deps.Publisher = s.queue
	}
	s.flows = flows.New(cfg, deps)
	return s, nil
}

// close drains pending snapshots before releasing the store
func (s *session) close() {
	if s.queue != nil {
		s.queue.Flush()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("Failed to close snapshot store", log.Error(err))
		}
	}
}

func setupLogging(cfg *config.Config) {
	level, _ := log.ParseLevel(cfg.LogLevel)
	env := os.Getenv("ENV")
	logger := log.NewWithLevel(os.Stderr, app.Name, env, app.Version, level)
	slog.SetDefault(logger)

	slog.Debug("Configuration loaded",
		slog.String("default_dsl", cfg.DefaultDSL),
		slog.String("snapshot_store", cfg.Snapshot.Store))
}

func contextOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
