// Command schemastore manages tables and rows through a SchemaStore, either
// directly from the command line or as a JSON HTTP API (serve).
package main

import (
	"github.com/alecthomas/kong"

	_ "github.com/koustreak/schemastore/internal/database/mysql"
	_ "github.com/koustreak/schemastore/internal/database/postgres"
	_ "github.com/koustreak/schemastore/internal/database/sqlite"
)

const version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Tables       TablesCmd       `cmd:"" help:"List tables"`
	Describe     DescribeCmd     `cmd:"" help:"Show a table's columns"`
	CreateTable  CreateTableCmd  `cmd:"" help:"Create a table"`
	DropTable    DropTableCmd    `cmd:"" help:"Drop a table if it exists"`
	RenameTable  RenameTableCmd  `cmd:"" help:"Rename a table"`
	Insert       InsertCmd       `cmd:"" help:"Insert one row"`
	Select       SelectCmd       `cmd:"" help:"Select rows as JSON lines"`
	DropDatabase DropDatabaseCmd `cmd:"" help:"Drop the configured database"`
	Seed         SeedCmd         `cmd:"" help:"Apply YAML fixtures from the file store"`
	Serve        ServeCmd        `cmd:"" help:"Serve the HTTP API"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("schemastore"),
		kong.Description("Guarded schema and data access for MySQL, PostgreSQL and SQLite"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
