package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/koustreak/schemastore/internal/config"
	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/logger"
	"github.com/koustreak/schemastore/internal/store"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `name:"config" short:"c" help:"YAML config file" type:"path"`
	EnvFile  string `name:"env-file" help:".env file to load" default:".env" type:"path"`
	Driver   string `name:"driver" help:"Override database driver (mysql, postgres, sqlite)"`
	Database string `name:"database" short:"d" help:"Override database name (file path for sqlite)"`
	LogLevel string `name:"log-level" help:"Override log level"`

	out io.Writer `kong:"-"`
}

func (g *Globals) stdout() io.Writer {
	if g.out != nil {
		return g.out
	}
	return os.Stdout
}

// load resolves the configuration, with flags taking precedence.
func (g *Globals) load() (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(g.Config, g.EnvFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if g.Driver != "" {
		cfg.Database.Driver = database.Driver(g.Driver)
	}
	if g.Database != "" {
		cfg.Database.Database = g.Database
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(&cfg.Log), nil
}

// open builds a connected store. The caller closes it.
func (g *Globals) open(ctx context.Context) (*store.Store, config.Config, *logger.Logger, error) {
	cfg, log, err := g.load()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	s := store.New(ctx, cfg.Database, store.WithLogger(log))
	if err := s.Err(); err != nil {
		return nil, config.Config{}, nil, err
	}
	return s, cfg, log, nil
}

// report prints res and turns a failed operation into a command error.
// Guard outcomes (already exists, not found, schema mismatch) are printed
// but are not failures.
func (g *Globals) report(res store.Result, err error) error {
	fmt.Fprintf(g.stdout(), "%s: %s\n", res.Kind, res.Message)
	return err
}

func (g *Globals) printJSON(v any) error {
	enc := json.NewEncoder(g.stdout())
	if err := enc.Encode(v); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write output", err)
	}
	return nil
}
