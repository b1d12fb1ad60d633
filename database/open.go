package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mymedicos/discuss-backend/config"
	"github.com/mymedicos/discuss-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Options tune how a connection is opened.
type Options struct {
	// NowFunc overrides the clock gorm uses for CreatedAt/UpdatedAt.
	NowFunc  func() time.Time
	LogLevel logger.LogLevel
}

func (o Options) gormConfig() *gorm.Config {
	level := o.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	gormConfig := &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             2 * time.Second,
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		),
	}
	if o.NowFunc != nil {
		gormConfig.NowFunc = o.NowFunc
	}
	return gormConfig
}

// Open connects to the database selected by DB_TYPE and registers the read
// replica and legacy directory sources when they are configured.
func Open(c map[string]string, opts Options) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	dbType := config.GetString(c, "DB_TYPE", "postgres")
	switch dbType {
	case "supa":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
		db, err = openPostgres(dsn, opts)
	case "postgres":
		dsn := config.GetString(c, "DATABASE_URL", "")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
		db, err = openPostgres(dsn, opts)
	case "sqlite":
		db, err = OpenSQLite(config.GetString(c, "DATABASE_PATH", "discuss.db"), opts)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
	if err != nil {
		return nil, err
	}

	if err := registerResolvers(db, c); err != nil {
		return nil, err
	}
	return db, nil
}

func openPostgres(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), opts.gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}

// OpenSQLite opens a sqlite database. A single connection is kept so that
// in-memory databases are shared and writers are serialized.
func OpenSQLite(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), opts.gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func registerResolvers(db *gorm.DB, c map[string]string) error {
	var resolver *dbresolver.DBResolver

	if replicas := config.GetList(c, "DATABASE_REPLICA_URLS"); len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, dsn := range replicas {
			dialectors = append(dialectors, postgres.Open(dsn))
		}
		resolver = dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		})
	}

	if legacyDSN := config.GetString(c, "LEGACY_DATABASE_URL", ""); legacyDSN != "" {
		legacy := dbresolver.Config{Sources: []gorm.Dialector{postgres.Open(legacyDSN)}}
		if resolver == nil {
			resolver = dbresolver.Register(legacy, &models.LegacyProfile{})
		} else {
			resolver = resolver.Register(legacy, &models.LegacyProfile{})
		}
	}

	if resolver == nil {
		return nil
	}
	if err := db.Use(resolver); err != nil {
		return fmt.Errorf("register db resolver: %w", err)
	}
	return nil
}

// Migrate creates or updates the forum tables. The legacy directory is only
// migrated when it lives in the primary database.
func Migrate(db *gorm.DB, includeLegacy bool) error {
	tables := models.Forum()
	if includeLegacy {
		tables = append(tables, &models.LegacyProfile{})
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
