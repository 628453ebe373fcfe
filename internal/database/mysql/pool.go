package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/schemastore/internal/database"
)

const defaultPort = 3306

// Connect opens cfg.Database over a single connection and pings it.
func (Dialect) Connect(ctx context.Context, cfg database.Config) (*sql.DB, error) {
	db, err := database.OpenSingle(ctx, "mysql", buildDSN(cfg, cfg.Database), cfg.ConnectTimeout)
	if err != nil {
		return nil, mapError(err, "connect failed")
	}
	return db, nil
}

// CreateDatabase connects with no database selected and creates cfg.Database.
func (d Dialect) CreateDatabase(ctx context.Context, cfg database.Config) error {
	db, err := database.OpenSingle(ctx, "mysql", buildDSN(cfg, ""), cfg.ConnectTimeout)
	if err != nil {
		return mapError(err, "server connect failed")
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+d.QuoteIdent(cfg.Database)); err != nil {
		return mapError(err, "create database failed")
	}
	return nil
}

// DropDatabase drops cfg.Database on the store's own connection. MySQL
// keeps the session open afterwards, so conn is not released.
func (d Dialect) DropDatabase(ctx context.Context, cfg database.Config, conn *sql.DB) (bool, error) {
	if _, err := conn.ExecContext(ctx, "DROP DATABASE IF EXISTS "+d.QuoteIdent(cfg.Database)); err != nil {
		return false, mapError(err, "drop database failed")
	}
	return false, nil
}

// buildDSN renders a go-sql-driver DSN for cfg with dbname selected
// (empty dbname connects to the server only).
func buildDSN(cfg database.Config, dbname string) string {
	c := gomysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = hostPort(cfg.Host, cfg.Port)
	c.DBName = dbname
	c.ParseTime = true
	c.Timeout = cfg.ConnectTimeout
	return c.FormatDSN()
}

// hostPort joins host and port unless host already names a port.
func hostPort(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}
