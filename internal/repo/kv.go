package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront/pkg/db/models"
)

// KVRepository implements the storage backend over the kv_entries table.
type KVRepository struct {
	db     *gorm.DB
	pinger func(context.Context) error
	now    func() time.Time
}

// NewKVRepository builds a repository over db. ping is used for readiness
// checks and may be nil.
func NewKVRepository(db *gorm.DB, ping func(context.Context) error) *KVRepository {
	return &KVRepository{db: db, pinger: ping, now: time.Now}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (r *KVRepository) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return r.db
	}
	return r.db.WithContext(ctx)
}

// Read returns the stored value for key, or nil when no row exists.
func (r *KVRepository) Read(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := r.DB(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

// Write upserts the value for key.
func (r *KVRepository) Write(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: string(value), UpdatedAt: r.now().UTC()}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *KVRepository) Ping(ctx context.Context) error {
	if r.pinger == nil {
		return nil
	}
	return r.pinger(ctx)
}
