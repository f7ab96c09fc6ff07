package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linskybing/regscan/internal/config"
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"github.com/linskybing/regscan/internal/domain/scan"
	"github.com/linskybing/regscan/internal/domain/scanerror"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"k8s.io/klog/v2"
)

// Models is every table the store declares on open.
var Models = []any{
	&repo.Repository{},
	&image.Image{},
	&scanerror.ErrorRecord{},
	&scan.Scan{},
}

// klogWriter routes gorm's SQL log into klog at high verbosity.
type klogWriter struct{}

func (klogWriter) Printf(format string, args ...any) {
	klog.V(4).Infof(format, args...)
}

func newLogger() logger.Interface {
	return logger.New(klogWriter{}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "", config.DriverSQLite:
		if cfg.DBPath == "" {
			return nil, errors.New("DB_PATH is required for the sqlite driver")
		}
		return sqlite.Open(sqliteDSN(cfg.DBPath)), nil
	case config.DriverPostgres:
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN is required for the postgres driver")
		}
		return postgres.Open(cfg.DBDSN), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// sqliteDSN waits on a locked file instead of failing, so server reads can
// overlap a running scan.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000"
}

// Open connects to the configured store and declares the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := gorm.Open(d, &gorm.Config{Logger: newLogger()})
	if err != nil {
		return nil, fmt.Errorf("connect to %s store: %w", cfg.DBDriver, err)
	}
	if err := Migrate(conn); err != nil {
		_ = Close(conn)
		return nil, err
	}
	klog.V(2).Infof("Store opened (driver=%s)", cfg.DBDriver)
	return conn, nil
}

// Migrate declares every table idempotently.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate store schema: %w", err)
	}
	return nil
}

func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithStore opens the store, runs fn and closes the store on every exit path.
func WithStore(cfg *config.Config, fn func(*gorm.DB) error) (err error) {
	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := Close(conn); cerr != nil {
			klog.Errorf("Failed to close store: %v", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()
	return fn(conn)
}
