package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NoamFav/Laundry/internal/model"
)

// gormStore persists the path tree in a records table. Updates are
// additionally serialized by a process-level mutex: SQLite has no row
// locking to lean on, and a single writer per key is exactly the
// discipline the shared-machine records need.
type gormStore struct {
	db       *gorm.DB
	fanout   *fanout
	updateMu sync.Mutex
}

// NewGormStore creates a database-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, fanout: newFanout()}
}

func (s *gormStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	var rec model.Record
	err := s.db.WithContext(ctx).First(&rec, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return json.RawMessage(rec.Value), nil
}

func (s *gormStore) ReadTree(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	var recs []model.Record
	err := s.db.WithContext(ctx).
		Where("path = ? OR path LIKE ?", path, path+"/%").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("read tree %q: %w", path, err)
	}

	tree := make(map[string]json.RawMessage, len(recs))
	for _, rec := range recs {
		tree[rec.Path] = json.RawMessage(rec.Value)
	}
	return tree, nil
}

func (s *gormStore) Write(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %q: %w", path, err)
	}
	if err := s.upsert(ctx, path, raw); err != nil {
		return err
	}
	s.fanout.publish(path, raw)
	return nil
}

func (s *gormStore) Update(ctx context.Context, path string, fn func(json.RawMessage) (any, error)) error {
	s.updateMu.Lock()

	current, err := s.Read(ctx, path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.updateMu.Unlock()
		return err
	}

	next, err := fn(current)
	if err != nil {
		s.updateMu.Unlock()
		return err
	}

	raw, err := json.Marshal(next)
	if err != nil {
		s.updateMu.Unlock()
		return fmt.Errorf("marshal value for %q: %w", path, err)
	}
	if err := s.upsert(ctx, path, raw); err != nil {
		s.updateMu.Unlock()
		return err
	}
	s.updateMu.Unlock()

	s.fanout.publish(path, raw)
	return nil
}

func (s *gormStore) Subscribe(path string, fn func(string, json.RawMessage)) func() {
	return s.fanout.subscribe(path, fn)
}

func (s *gormStore) upsert(ctx context.Context, path string, raw []byte) error {
	rec := model.Record{Path: path, Value: raw}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
