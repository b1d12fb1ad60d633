// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Clock advances by one millisecond on every reading so that timestamps
// written by consecutive statements are strictly ordered.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// Open returns a migrated, private in-memory database that is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, _ := open(t)
	return db
}

// OpenWithLaggingReplica is Open with a read replica that never receives
// any writes, so plain reads miss everything written through the primary.
func OpenWithLaggingReplica(t testing.TB) *gorm.DB {
	t.Helper()

	db, _ := open(t)
	// The replica stays open so its in-memory schema outlives the resolver's connections.
	_, replicaDSN := open(t)

	require.NoError(t, db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{sqlite.Open(replicaDSN)},
	})))
	return db
}

func open(t testing.TB) (*gorm.DB, string) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn, database.Options{
		NowFunc:  NewClock().Now,
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, true))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db, dsn
}
