package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// NewTestManager opens a private in-memory sqlite database, initializes and
// seeds it. The admin password is "admin123".
func NewTestManager(t testing.TB) *Manager {
	t.Helper()

	name := fmt.Sprintf("file:yemenflix_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	m := NewManager(db, WithAdminPassword("admin123", bcrypt.MinCost))
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize test db: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}
