package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191"`
	Payload   []byte    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&Entry{})
}

func (r *GormRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entries []Entry
	if err := r.DB.WithContext(ctx).Where("entry_key = ?", key).Limit(1).Find(&entries).Error; err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	return entries[0].Payload, true, nil
}

func (r *GormRepo) Put(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Payload: value}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&entry).Error
}

func (r *GormRepo) Delete(ctx context.Context, key string) error {
	return r.DB.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
}

var _ Store = (*GormRepo)(nil)
