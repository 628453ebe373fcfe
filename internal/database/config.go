package database

import "time"

// Driver identifies the database engine.
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Config holds the settings needed to reach one database.
// A SchemaStore copies it at construction and never mutates it.
type Config struct {
	// Driver is the database engine. Empty means DriverMySQL.
	Driver Driver `yaml:"driver"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"` // 0 selects the dialect default
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// SSLMode is passed to PostgreSQL (disable, prefer, require, …).
	SSLMode string `yaml:"sslmode"`

	// Timeouts. Zero disables the deadline.
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // establishing the connection
	QueryTimeout   time.Duration `yaml:"query_timeout"`   // each statement round trip
}

// DefaultConfig returns a MySQL config for the four connection settings.
func DefaultConfig(host, dbname, user, password string) Config {
	return Config{
		Driver:         DriverMySQL,
		Host:           host,
		Database:       dbname,
		User:           user,
		Password:       password,
		ConnectTimeout: 10 * time.Second,
	}
}

// DriverOrDefault returns c.Driver, or DriverMySQL when unset.
func (c Config) DriverOrDefault() Driver {
	if c.Driver == "" {
		return DriverMySQL
	}
	return c.Driver
}
