// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tphakala/pathotrack/internal/conf"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Interface abstracts the underlying database implementation and defines the
// operations the importer needs from the record store.
type Interface interface {
	Open() error
	Close() error
	// DedupRows loads the id plus the requested dedup-key columns of every
	// persisted record of the given model, optionally through join clauses.
	DedupRows(model any, columns, joins []string) ([]map[string]any, error)
	// FindAll loads all records of a model into dest, e.g. &[]Host{}.
	FindAll(dest any) error
	// BulkInsert stages new records into the store inside one transaction.
	// A batchSize of 0 inserts everything in a single statement.
	BulkInsert(records any, batchSize int) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new DataStore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// DedupRows returns one map per persisted record carrying the id and the
// requested columns. Joined columns must be aliased by the caller.
func (ds *DataStore) DedupRows(model any, columns, joins []string) ([]map[string]any, error) {
	if ds.DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	query := ds.DB.Model(model).Select(strings.Join(columns, ", "))
	for _, join := range joins {
		query = query.Joins(join)
	}

	var rows []map[string]any
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading dedup rows: %w", err)
	}
	return rows, nil
}

// FindAll loads every record of a model into dest.
func (ds *DataStore) FindAll(dest any) error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if err := ds.DB.Find(dest).Error; err != nil {
		return fmt.Errorf("loading records: %w", err)
	}
	return nil
}

// BulkInsert stores the staged records as a single transaction in the database.
func (ds *DataStore) BulkInsert(records any, batchSize int) error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if batchSize > 0 {
			err = tx.CreateInBatches(records, batchSize).Error
		} else {
			err = tx.Create(records).Error
		}
		if err != nil {
			return fmt.Errorf("bulk inserting records: %w", err)
		}
		return nil
	})
}

// performAutoMigration migrates the entity tables for the given database.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Publication{}, &Dataset{}, &Host{}, &Pathogen{}, &Sequence{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
