// Package postgres owns the PostgreSQL pool and the embedded schema
// migrations behind the design repository.
package postgres

import (
	"cmp"
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// sqlOpen is replaced in tests by a sqlmock-backed opener.
var sqlOpen = sql.Open

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute

	// Server-side limits sent with every session.  A design row is small;
	// anything slower than this is a stuck lock, not a slow query.
	statementTimeout = 30 * time.Second
	lockTimeout      = 10 * time.Second

	pingTimeout = 5 * time.Second
	// hotPoolRatio is the in-use share of open connections above which a
	// health check logs a warning.
	hotPoolRatio = 0.8
)

// Connection is the process-wide pool.
type Connection struct {
	db        *sql.DB
	logger    logging.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewConnection opens the pool and fails unless the server answers a ping.
func NewConnection(cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	db, err := sqlOpen("postgres", BuildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open database connection")
	}
	db.SetMaxOpenConns(cmp.Or(max(cfg.MaxOpenConns, 0), defaultMaxOpenConns))
	db.SetMaxIdleConns(cmp.Or(max(cfg.MaxIdleConns, 0), defaultMaxIdleConns))
	db.SetConnMaxLifetime(cmp.Or(max(cfg.ConnMaxLifetime, 0), defaultConnMaxLifetime))
	db.SetConnMaxIdleTime(cmp.Or(max(cfg.ConnMaxIdleTime, 0), defaultConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("Connected to PostgreSQL database",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)
	return &Connection{db: db, logger: log}, nil
}

// NewConnectionWithDB adopts a pool opened elsewhere.
func NewConnectionWithDB(db *sql.DB, log logging.Logger) *Connection {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Connection{db: db, logger: log}
}

func (c *Connection) DB() *sql.DB { return c.db }

func (c *Connection) Stats() sql.DBStats { return c.db.Stats() }

// HealthCheck pings the server.  A pool running hot is logged but still
// healthy.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}
	if s := c.Stats(); s.OpenConnections > 0 {
		if usage := float64(s.InUse) / float64(s.OpenConnections); usage > hotPoolRatio {
			c.logger.Warn("High database connection pool usage",
				logging.Int("in_use", s.InUse),
				logging.Int("open", s.OpenConnections),
				logging.Float64("usage", usage),
			)
		}
	}
	return nil
}

// Close releases the pool once; later calls return the first result.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		if c.closeErr = c.db.Close(); c.closeErr != nil {
			c.logger.Error("Failed to close PostgreSQL database connection", logging.Err(c.closeErr))
			return
		}
		c.logger.Info("Closed PostgreSQL database connection")
	})
	return c.closeErr
}

// BuildDSN renders cfg as a postgres:// URL, accepted by lib/pq and by
// golang-migrate alike.  sslmode defaults to disable.
func BuildDSN(cfg config.DatabaseConfig) string {
	q := url.Values{}
	q.Set("sslmode", cmp.Or(cfg.SSLMode, "disable"))
	q.Set("statement_timeout", strconv.FormatInt(statementTimeout.Milliseconds(), 10))
	q.Set("lock_timeout", strconv.FormatInt(lockTimeout.Milliseconds(), 10))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     cfg.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

//Personal.AI order the ending
