package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pankajredekar/lemonmenu/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *MenuStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	s, err := Open(db)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return s
}

func receive(t *testing.T, ch <-chan []model.MenuRecord) []model.MenuRecord {
	t.Helper()
	select {
	case snapshot, ok := <-ch:
		if !ok {
			t.Fatal("Subscription closed unexpectedly")
		}
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for snapshot")
	}
	return nil
}

func titles(records []model.MenuRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestOpenCreatesTable(t *testing.T) {
	s := setupTestStore(t)
	if !s.db.Migrator().HasTable("menu_items") {
		t.Fatal("menu_items table should exist")
	}
	for _, col := range []string{"id", "title", "price"} {
		if !s.db.Migrator().HasColumn(&model.MenuRecord{}, col) {
			t.Errorf("Column %s should exist", col)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	empty, err := s.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("IsEmpty failed: %v", err)
	}
	if !empty {
		t.Error("Store should be empty initially")
	}

	if err := s.InsertAll(ctx, []model.MenuRecord{{ID: 1, Title: "Pasta", Price: 10}}); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	empty, err = s.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("IsEmpty failed: %v", err)
	}
	if empty {
		t.Error("Store should not be empty after insert")
	}
}

func TestInsertAllReplacesExistingID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.InsertAll(ctx, []model.MenuRecord{{ID: 1, Title: "Pasta", Price: 10}, {ID: 2, Title: "Pizza", Price: 8.5}}); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}
	if err := s.InsertAll(ctx, []model.MenuRecord{{ID: 1, Title: "Lasagna", Price: 12}}); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0] != (model.MenuRecord{ID: 1, Title: "Lasagna", Price: 12}) {
		t.Errorf("Expected id 1 to be replaced, got %+v", records[0])
	}
}

func TestInsertAllDedupesLastWriteWins(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.InsertAll(ctx, []model.MenuRecord{
		{ID: 1, Title: "Pasta", Price: 10},
		{ID: 2, Title: "Pizza", Price: 8.5},
		{ID: 1, Title: "Pasta Carbonara", Price: 11},
	})
	if err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if records[0].Title != "Pasta Carbonara" || records[0].Price != 11 {
		t.Errorf("Expected last write to win, got %+v", records[0])
	}
}

func TestInsertAllPublishesAfterContextCancelledPostCommit(t *testing.T) {
	s := setupTestStore(t)

	sub, err := s.ObserveAll(context.Background())
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	receive(t, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = s.db.Callback().Create().After("gorm:commit_or_rollback_transaction").
		Register("lemonmenu:cancel_after_commit", func(*gorm.DB) { cancel() })
	if err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}

	if err := s.InsertAll(ctx, []model.MenuRecord{{ID: 1, Title: "Pasta", Price: 10}}); err != nil {
		t.Fatalf("InsertAll should succeed once the write committed: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatal("Expected the context to be cancelled after commit")
	}

	if got := titles(receive(t, sub)); len(got) != 1 || got[0] != "Pasta" {
		t.Errorf("Expected snapshot [Pasta], got %v", got)
	}
}

func TestInsertAllEmptyIsNoop(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	receive(t, ch)

	if err := s.InsertAll(ctx, nil); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	select {
	case snapshot := <-ch:
		t.Errorf("Empty insert should not emit, got %+v", snapshot)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestObserveAllEmitsInitialEmptySnapshot(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}

	snapshot := receive(t, ch)
	if snapshot == nil {
		t.Error("Initial snapshot should be an empty list, not nil")
	}
	if len(snapshot) != 0 {
		t.Errorf("Expected empty snapshot, got %+v", snapshot)
	}
}

func TestObserveAllEmitsAfterInsert(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	receive(t, ch)

	err = s.InsertAll(ctx, []model.MenuRecord{
		{ID: 1, Title: "Pasta", Price: 10},
		{ID: 2, Title: "Pizza", Price: 8.5},
		{ID: 2, Title: "Pizza Margherita", Price: 9},
	})
	if err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	snapshot := receive(t, ch)
	got := titles(snapshot)
	if len(got) != 2 || got[0] != "Pasta" || got[1] != "Pizza Margherita" {
		t.Errorf("Unexpected snapshot %v", got)
	}
}

func TestObserveAllMultipleSubscribers(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	b, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	receive(t, a)
	receive(t, b)

	if err := s.InsertAll(ctx, []model.MenuRecord{{ID: 1, Title: "Pasta", Price: 10}}); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	if len(receive(t, a)) != 1 || len(receive(t, b)) != 1 {
		t.Error("Both subscribers should receive the new snapshot")
	}
}

func TestObserveAllConflatesToNewest(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}

	// Never read in between: only the newest snapshot may be pending
	for i := int64(1); i <= 3; i++ {
		if err := s.InsertAll(ctx, []model.MenuRecord{{ID: i, Title: "Item", Price: 1}}); err != nil {
			t.Fatalf("InsertAll failed: %v", err)
		}
	}

	snapshot := receive(t, ch)
	if len(snapshot) != 3 {
		t.Errorf("Expected newest snapshot with 3 records, got %d", len(snapshot))
	}
}

func TestObserveAllClosesOnCancel(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	receive(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Subscription was not closed after cancel")
	}

	if n := s.Subscribers(); n != 0 {
		t.Errorf("Expected 0 subscribers, got %d", n)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	s := setupTestStore(t)

	ch, err := s.ObserveAll(context.Background())
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	receive(t, ch)
	s.Close()

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after Close")
	}

	_, err = s.ObserveAll(context.Background())
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Errorf("Expected StorageError after Close, got %v", err)
	}
}

func TestClear(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.InsertAll(ctx, []model.MenuRecord{{ID: 1, Title: "Pasta", Price: 10}}); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	ch, err := s.ObserveAll(ctx)
	if err != nil {
		t.Fatalf("ObserveAll failed: %v", err)
	}
	if len(receive(t, ch)) != 1 {
		t.Fatal("Expected one record before Clear")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if len(receive(t, ch)) != 0 {
		t.Error("Clear should publish an empty snapshot")
	}
	empty, err := s.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("IsEmpty failed: %v", err)
	}
	if !empty {
		t.Error("Store should be empty after Clear")
	}
}

func TestStorageErrorOnClosedDatabase(t *testing.T) {
	s := setupTestStore(t)
	sqlDB, err := s.db.DB()
	if err != nil {
		t.Fatalf("DB failed: %v", err)
	}
	_ = sqlDB.Close()

	_, err = s.IsEmpty(context.Background())
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StorageError, got %v", err)
	}
	if serr.Op != "count menu items" {
		t.Errorf("Unexpected op %q", serr.Op)
	}
}

func TestDedupeByIDKeepsFirstPosition(t *testing.T) {
	out := dedupeByID([]model.MenuRecord{
		{ID: 3, Title: "a"},
		{ID: 1, Title: "b"},
		{ID: 3, Title: "c"},
	})
	if len(out) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(out))
	}
	if out[0].ID != 3 || out[0].Title != "c" || out[1].ID != 1 {
		t.Errorf("Unexpected result %+v", out)
	}
}
