package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pankajredekar/lemonmenu/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertBatchSize bounds the rows per INSERT statement
const insertBatchSize = 100

// StorageError wraps a persistence engine failure
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MenuStore is the local cache of menu records.
//
// Writes and snapshot publication are serialized by mu, so subscribers
// observe snapshots in the order mutations were applied.
type MenuStore struct {
	db *gorm.DB

	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
	closed bool
}

type subscription struct {
	ch   chan []model.MenuRecord
	stop chan struct{}
}

func (sub *subscription) end() {
	close(sub.stop)
	close(sub.ch)
}

// Open prepares the menu_items table and returns a store backed by db
func Open(db *gorm.DB) (*MenuStore, error) {
	if err := db.AutoMigrate(&model.MenuRecord{}); err != nil {
		return nil, &StorageError{Op: "create menu table", Err: err}
	}
	return &MenuStore{
		db:   db,
		subs: make(map[uint64]*subscription),
	}, nil
}

// IsEmpty reports whether no menu record exists. It blocks on the database.
func (s *MenuStore) IsEmpty(ctx context.Context) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Count returns the number of cached records
func (s *MenuStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.MenuRecord{}).Count(&count).Error; err != nil {
		return 0, &StorageError{Op: "count menu items", Err: err}
	}
	return count, nil
}

// All returns every record in natural (primary key) order
func (s *MenuStore) All(ctx context.Context) ([]model.MenuRecord, error) {
	return s.all(s.db.WithContext(ctx))
}

func (s *MenuStore) all(db *gorm.DB) ([]model.MenuRecord, error) {
	records := []model.MenuRecord{}
	if err := db.Order("id ASC").Find(&records).Error; err != nil {
		return nil, &StorageError{Op: "query menu items", Err: err}
	}
	return records, nil
}

// InsertAll upserts records. A record whose id already exists replaces the
// stored row. Duplicate ids within records resolve last-write-wins.
// A successful write publishes a fresh snapshot to every subscriber.
func (s *MenuStore) InsertAll(ctx context.Context, records []model.MenuRecord) error {
	records = dedupeByID(records)
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "price"}),
	}).CreateInBatches(&records, insertBatchSize).Error
	if err != nil {
		return &StorageError{Op: "insert menu items", Err: err}
	}

	// The write is committed; a cancelled ctx must not hide it from subscribers
	return s.publishLocked(s.db.WithContext(context.WithoutCancel(ctx)))
}

// Clear removes every cached record, so the next sync fetches again
func (s *MenuStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MenuRecord{}).Error; err != nil {
		return &StorageError{Op: "clear menu items", Err: err}
	}
	return s.publishLocked(s.db.WithContext(context.WithoutCancel(ctx)))
}

// ObserveAll subscribes to the full record list. The current snapshot is
// delivered first, then one snapshot per mutation. A slow reader only sees
// the newest pending snapshot. The channel is closed when ctx is done or the
// store is closed.
func (s *MenuStore) ObserveAll(ctx context.Context) (<-chan []model.MenuRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, &StorageError{Op: "observe menu items", Err: fmt.Errorf("store is closed")}
	}

	snapshot, err := s.all(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	sub := &subscription{
		ch:   make(chan []model.MenuRecord, 1),
		stop: make(chan struct{}),
	}
	sub.ch <- snapshot
	id := s.nextID
	s.nextID++
	s.subs[id] = sub

	go func() {
		select {
		case <-ctx.Done():
			s.unsubscribe(id)
		case <-sub.stop:
		}
	}()

	return sub.ch, nil
}

// Subscribers returns the number of live subscriptions
func (s *MenuStore) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close ends every subscription. The underlying database is left open.
func (s *MenuStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, sub := range s.subs {
		sub.end()
		delete(s.subs, id)
	}
}

func (s *MenuStore) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subs[id]; ok {
		sub.end()
		delete(s.subs, id)
	}
}

// publishLocked reads the table and hands a copy to every subscriber.
// Must be called with mu held.
func (s *MenuStore) publishLocked(db *gorm.DB) error {
	if len(s.subs) == 0 {
		return nil
	}
	snapshot, err := s.all(db)
	if err != nil {
		return err
	}
	for _, sub := range s.subs {
		// mu makes this the only sender, so after the drain the slot is free
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- slices.Clone(snapshot):
		default:
		}
	}
	return nil
}

func dedupeByID(records []model.MenuRecord) []model.MenuRecord {
	if len(records) < 2 {
		return records
	}
	pos := make(map[int64]int, len(records))
	out := make([]model.MenuRecord, 0, len(records))
	for _, r := range records {
		if i, ok := pos[r.ID]; ok {
			out[i] = r
			continue
		}
		pos[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}
