// Package testenv builds throwaway stores for package tests.
package testenv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/db"
	"github.com/Skotchmaster/auth_service/internal/kv"
)

// InitTestDB opens a private in-memory sqlite database with the schema migrated.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// InitTestKV starts a miniredis server. Closing the returned server
// simulates a store outage.
func InitTestKV(t *testing.T) (*kv.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store := kv.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Second)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}
