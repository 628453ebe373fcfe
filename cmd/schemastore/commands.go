package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/filestore"
	"github.com/koustreak/schemastore/internal/filestore/local"
	"github.com/koustreak/schemastore/internal/filestore/minio"
	"github.com/koustreak/schemastore/internal/seed"
	"github.com/koustreak/schemastore/internal/server"
	"github.com/koustreak/schemastore/internal/store"
	"go.yaml.in/yaml/v3"
)

// TablesCmd lists tables.
type TablesCmd struct{}

func (c *TablesCmd) Run(g *Globals) error {
	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	tables, err := s.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(g.stdout(), t)
	}
	return nil
}

// DescribeCmd prints a table's columns.
type DescribeCmd struct {
	Table string `arg:"" help:"Table name"`
}

func (c *DescribeCmd) Run(g *Globals) error {
	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	cols, res, err := s.DescribeTable(ctx, c.Table)
	if err != nil || !res.OK() {
		return g.report(res, err)
	}
	for _, col := range cols {
		null := "NOT NULL"
		if col.Nullable {
			null = "NULL"
		}
		fmt.Fprintf(g.stdout(), "%s\t%s\t%s\n", col.Name, col.DataType, null)
	}
	return nil
}

// CreateTableCmd creates a table from name=definition pairs.
type CreateTableCmd struct {
	Table   string   `arg:"" help:"Table name"`
	Columns []string `name:"column" short:"C" required:"" sep:"none" help:"Column as name=definition, e.g. -C 'id=INT PRIMARY KEY'. Repeat in order."`
}

func (c *CreateTableCmd) Run(g *Globals) error {
	spec, err := parseColumns(c.Columns)
	if err != nil {
		return err
	}
	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return g.report(s.CreateTable(ctx, c.Table, spec))
}

func parseColumns(pairs []string) (store.ColumnSpec, error) {
	spec := make(store.ColumnSpec, 0, len(pairs))
	for _, p := range pairs {
		name, def, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "column %q must be name=definition", p)
		}
		spec = append(spec, database.ColumnDef{Name: strings.TrimSpace(name), Definition: strings.TrimSpace(def)})
	}
	return spec, nil
}

// DropTableCmd drops a table.
type DropTableCmd struct {
	Table string `arg:"" help:"Table name"`
}

func (c *DropTableCmd) Run(g *Globals) error {
	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return g.report(s.DropTable(ctx, c.Table))
}

// RenameTableCmd renames a table.
type RenameTableCmd struct {
	From string `arg:"" help:"Current name"`
	To   string `arg:"" help:"New name"`
}

func (c *RenameTableCmd) Run(g *Globals) error {
	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return g.report(s.RenameTable(ctx, c.From, c.To))
}

// InsertCmd inserts one row given as a YAML or JSON mapping.
type InsertCmd struct {
	Table string `arg:"" help:"Table name"`
	Row   string `arg:"" help:"Row as a YAML/JSON mapping, e.g. '{id: 1, name: Ann}'"`
}

func (c *InsertCmd) Run(g *Globals) error {
	var row store.RowData
	if err := yaml.Unmarshal([]byte(c.Row), &row); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "row is not a YAML mapping", err)
	}

	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return g.report(s.InsertRow(ctx, c.Table, row))
}

// SelectCmd prints matching rows, one JSON object per line.
type SelectCmd struct {
	Table   string   `arg:"" help:"Table name"`
	Columns []string `name:"columns" help:"Columns to return (default all)"`
	Where   string   `name:"where" help:"Raw WHERE clause; bind values with --arg"`
	Args    []string `name:"arg" sep:"none" help:"Value for a placeholder in --where. Repeat in order."`
	Order   string   `name:"order" help:"Raw ORDER BY clause"`
	Limit   int      `name:"limit" help:"Maximum rows (0 = all)"`
}

func (c *SelectCmd) Run(g *Globals) error {
	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		args[i] = a
	}
	rows, res, err := s.SelectRows(ctx, c.Table, c.Columns, store.SelectOptions{
		Where:   c.Where,
		Args:    args,
		OrderBy: c.Order,
		Limit:   c.Limit,
	})
	if err != nil || !res.OK() {
		return g.report(res, err)
	}
	for _, row := range rows {
		if err := g.printJSON(row); err != nil {
			return err
		}
	}
	return nil
}

// DropDatabaseCmd drops the configured database.
type DropDatabaseCmd struct {
	Yes bool `name:"yes" help:"Confirm dropping the database"`
}

func (c *DropDatabaseCmd) Run(g *Globals) error {
	if !c.Yes {
		return errs.New(errs.ErrKindInvalidInput, "refusing to drop the database without --yes")
	}
	ctx := context.Background()
	s, _, _, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return g.report(s.DropDatabase(ctx))
}

// SeedCmd applies fixtures from the configured file store.
type SeedCmd struct {
	Dir    string `name:"dir" help:"Read fixtures from this local directory instead of the configured store" type:"path"`
	Bucket string `name:"bucket" help:"Bucket (or subdirectory of --dir) holding the fixtures"`
	Prefix string `name:"prefix" help:"Key prefix of the fixtures"`
	Limit  int    `name:"limit" help:"Read at most this many objects under the prefix (0 = all)"`
}

func (c *SeedCmd) Run(g *Globals) error {
	ctx := context.Background()
	s, cfg, log, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	fsCfg := cfg.FileStore
	if c.Dir != "" {
		fsCfg.Provider = filestore.ProviderLocal
		fsCfg.Root = c.Dir
	}
	if c.Bucket != "" {
		fsCfg.Bucket = c.Bucket
	}
	if c.Prefix != "" {
		fsCfg.Prefix = c.Prefix
	}

	fs, err := openFileStore(ctx, fsCfg)
	if err != nil {
		return err
	}
	defer fs.Close()

	fixtures, err := seed.NewLoader(fs, fsCfg.Bucket, fsCfg.Prefix, seed.WithLimit(c.Limit)).Load(ctx)
	if err != nil {
		return err
	}
	reports, err := seed.ApplyAll(log.WithContext(ctx), s, fixtures)
	for _, r := range reports {
		fmt.Fprintf(g.stdout(), "%s: %d rows (created=%t) from %s\n", r.Table, r.RowsInserted, r.TableCreated, r.Source)
	}
	return err
}

func openFileStore(ctx context.Context, cfg filestore.Config) (filestore.Store, error) {
	if !cfg.Enabled() {
		return nil, errs.New(errs.ErrKindInvalidInput, "no fixture store configured; set filestore in the config or pass --dir")
	}
	if cfg.Provider == filestore.ProviderLocal {
		d, err := local.New(cfg.Root)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	d, err := minio.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr string `name:"addr" help:"Listen address (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, cfg, log, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if c.Addr != "" {
		cfg.HTTP.Addr = c.Addr
	}
	return server.New(s, log).ListenAndServe(ctx, cfg.HTTP)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.stdout(), "schemastore %s\n", version)
	return nil
}
