package mysql

import (
	"errors"
	"fmt"
	"time"

	"payment-service/src/pkg/log"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

// ErrDuplicateEntry is MySQL's ER_DUP_ENTRY.
const ErrDuplicateEntry = 1062

// DBInterface hands out the shared connection pool.
type DBInterface interface {
	GetDB() (*sqlx.DB, error)
	Close() error
}

type connection struct {
	db *sqlx.DB
}

// InitConnection opens the pool described by the database.* keys.
func InitConnection(v *viper.Viper, logger log.Log) (DBInterface, error) {
	cfg := driver.NewConfig()
	cfg.User = v.GetString("database.username")
	cfg.Passwd = v.GetString("database.password")
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", v.GetString("database.host"), v.GetInt("database.port"))
	cfg.DBName = v.GetString("database.name")
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(v.GetInt("database.pool.max"))
	db.SetMaxIdleConns(v.GetInt("database.pool.idle"))
	db.SetConnMaxLifetime(time.Duration(v.GetInt("database.pool.lifetime")) * time.Second)

	if err := db.Ping(); err != nil {
		logger.Error("mysql", fmt.Sprintf("ping failed: %v", err), "InitConnection", cfg.Addr)
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	logger.Info("mysql", "connected", "InitConnection", cfg.Addr)
	return &connection{db: db}, nil
}

// Wrap adapts an existing pool, used by tests with sqlmock.
func Wrap(db *sqlx.DB) DBInterface {
	return &connection{db: db}
}

func (c *connection) GetDB() (*sqlx.DB, error) {
	if c.db == nil {
		return nil, errors.New("mysql connection is not initialised")
	}
	return c.db, nil
}

func (c *connection) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// IsDuplicateEntry reports whether err is a unique key violation.
func IsDuplicateEntry(err error) bool {
	var myErr *driver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == ErrDuplicateEntry
}
