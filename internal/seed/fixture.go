// Package seed loads table fixtures from YAML and applies them through a
// store: create the table if needed, then insert every row.
//
// A fixture:
//
//	table: users
//	columns:
//	  - {name: id, definition: INT PRIMARY KEY}
//	  - {name: name, definition: VARCHAR(50)}
//	rows:
//	  - {id: 1, name: Ann}
package seed

import (
	"context"
	"fmt"

	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/logger"
	"github.com/koustreak/schemastore/internal/store"
	"go.yaml.in/yaml/v3"
)

// Fixture is one table and the rows to put in it.
type Fixture struct {
	Table   string              `yaml:"table"`
	Columns database.ColumnSpec `yaml:"columns"`
	Rows    []database.RowData  `yaml:"rows"`

	// Source is where the fixture was read from, for messages.
	Source string `yaml:"-"`
}

// Parse decodes and validates one YAML fixture.
func Parse(data []byte, source string) (Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixture{}, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("fixture %s is not valid YAML", source), err)
	}
	fx.Source = source
	if fx.Table == "" {
		return Fixture{}, errs.Newf(errs.ErrKindInvalidInput, "fixture %s has no table", source)
	}
	if len(fx.Columns) == 0 {
		return Fixture{}, errs.Newf(errs.ErrKindInvalidInput, "fixture %s has no columns", source)
	}
	return fx, nil
}

// Target is the part of *store.Store that Apply needs.
type Target interface {
	CreateTable(ctx context.Context, table string, columns store.ColumnSpec) (store.Result, error)
	InsertRow(ctx context.Context, table string, row store.RowData) (store.Result, error)
}

// Report summarizes one applied fixture.
type Report struct {
	Table        string
	Source       string
	TableCreated bool
	RowsInserted int
}

// Apply creates fx.Table (an existing table is kept) and inserts every row
// in order. It stops at the first row the store rejects; rows inserted
// before that stay.
func Apply(ctx context.Context, t Target, fx Fixture) (Report, error) {
	log := logger.FromContext(ctx).With().Str("table", fx.Table).Str("source", fx.Source).Logger()
	rep := Report{Table: fx.Table, Source: fx.Source}

	res, err := t.CreateTable(ctx, fx.Table, fx.Columns)
	if err != nil {
		return rep, err
	}
	switch res.Kind {
	case store.Success:
		rep.TableCreated = true
	case store.AlreadyExists:
		log.Debug("table exists, inserting rows only")
	default:
		return rep, errs.Newf(errs.ErrKindQueryFailed, "create table %s: %s", fx.Table, res.Message)
	}

	for i, row := range fx.Rows {
		res, err := t.InsertRow(ctx, fx.Table, row)
		if err != nil {
			return rep, errs.Wrap(errs.KindOf(err), fmt.Sprintf("row %d of %s", i+1, fx.Table), err)
		}
		if !res.OK() {
			return rep, errs.Newf(errs.ErrKindQueryFailed, "row %d of %s: %s", i+1, fx.Table, res.Message)
		}
		rep.RowsInserted++
	}

	log.With().Int("rows", rep.RowsInserted).Logger().Info("fixture applied")
	return rep, nil
}

// ApplyAll applies fixtures in order and stops at the first failure.
func ApplyAll(ctx context.Context, t Target, fixtures []Fixture) ([]Report, error) {
	reports := make([]Report, 0, len(fixtures))
	for _, fx := range fixtures {
		rep, err := Apply(ctx, t, fx)
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}
