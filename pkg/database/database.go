package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config describes where the registry and the per-profile stores live
type Config struct {
	Driver  string
	DSN     string
	DataDir string
	Debug   bool
}

func newLogger(debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// OpenSQLite opens a single-file store. One connection keeps writes serialized,
// which is all a single-user ledger needs.
func OpenSQLite(path string, debug bool) (*gorm.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newLogger(debug),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// ConnectRegistry opens the database that holds the profile registry
func ConnectRegistry(cfg Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return connectPostgres(cfg)
	case DriverSQLite, "":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create data dir %s", cfg.DataDir)
		}
		db, err := OpenSQLite(filepath.Join(cfg.DataDir, "users.db"), cfg.Debug)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.DataDir).Info("Registry database opened (sqlite)")
		return db, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}

func connectPostgres(cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pooled deployments
	}), &gorm.Config{
		Logger:      newLogger(cfg.Debug),
		PrepareStmt: false,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Registry database opened (postgres)")
	return db, nil
}

// Opener opens the isolated store of one profile: a sqlite file per profile, or a
// postgres schema per profile sharing the registry's connection pool.
type Opener struct {
	cfg      Config
	registry *gorm.DB
}

func NewOpener(cfg Config, registry *gorm.DB) *Opener {
	return &Opener{cfg: cfg, registry: registry}
}

// SQLitePath is the data file of a profile store
func (o *Opener) SQLitePath(username string) string {
	return filepath.Join(o.cfg.DataDir, fmt.Sprintf("products_%s.db", username))
}

func schemaName(username string) string {
	return "profile_" + username
}

func (o *Opener) Open(username string) (*gorm.DB, error) {
	if o.cfg.Driver != DriverPostgres {
		if err := os.MkdirAll(o.cfg.DataDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create data dir %s", o.cfg.DataDir)
		}
		return OpenSQLite(o.SQLitePath(username), o.cfg.Debug)
	}

	name := schemaName(username)
	if err := o.registry.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, name)).Error; err != nil {
		return nil, errors.Wrapf(err, "create schema %s", name)
	}

	sqlDB, err := o.registry.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         newLogger(o.cfg.Debug),
		NamingStrategy: schema.NamingStrategy{TablePrefix: name + "."},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open schema %s", name)
	}
	return db, nil
}

// Close releases a profile store. Postgres stores share the registry pool and stay open.
func (o *Opener) Close(db *gorm.DB) error {
	if o.cfg.Driver == DriverPostgres {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return sqlDB.Close()
}

// Drop removes every record of a profile store. The store must be closed first.
func (o *Opener) Drop(username string) error {
	if o.cfg.Driver == DriverPostgres {
		name := schemaName(username)
		return errors.Wrapf(
			o.registry.Exec(fmt.Sprintf(`DROP SCHEMA IF EXISTS "%s" CASCADE`, name)).Error,
			"drop schema %s", name,
		)
	}

	path := o.SQLitePath(username)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", path)
	}
	return nil
}
