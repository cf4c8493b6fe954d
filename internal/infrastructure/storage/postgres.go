// internal/infrastructure/storage/postgres.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agri-oasis/storefront/internal/domain/session"
)

// SessionSlot is one persisted slot row
type SessionSlot struct {
	ClientID  string    `json:"client_id" gorm:"primaryKey;size:64"`
	Slot      string    `json:"slot" gorm:"primaryKey;size:32"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for SessionSlot
func (SessionSlot) TableName() string {
	return "session_slots"
}

// Postgres stores slots in the session_slots table
type Postgres struct {
	db *gorm.DB
}

// NewPostgres creates a gorm backed backend
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Name() string { return "postgres" }

// ForClient returns the slots of clientID
func (p *Postgres) ForClient(clientID string) (session.Slots, error) {
	if err := checkClientID(clientID); err != nil {
		return nil, err
	}
	return &postgresSlots{db: p.db, clientID: clientID}, nil
}

// DeleteOlderThan removes slots not written since cutoff
func (p *Postgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := p.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&SessionSlot{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete stale slots: %w", result.Error)
	}
	return result.RowsAffected, nil
}

type postgresSlots struct {
	db       *gorm.DB
	clientID string
}

func (s *postgresSlots) Get(ctx context.Context, key string) (string, bool, error) {
	var row SessionSlot
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND slot = ?", s.clientID, key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *postgresSlots) Set(ctx context.Context, key, value string) error {
	row := SessionSlot{ClientID: s.clientID, Slot: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Refresh bumps updated_at so the janitor keeps the rows of an active client
func (s *postgresSlots) Refresh(ctx context.Context, keys ...string) (bool, error) {
	if len(keys) == 0 {
		return true, nil
	}
	result := s.db.WithContext(ctx).Model(&SessionSlot{}).
		Where("client_id = ? AND slot IN ?", s.clientID, keys).
		Update("updated_at", time.Now())
	if result.Error != nil {
		return false, fmt.Errorf("failed to refresh slots: %w", result.Error)
	}
	return result.RowsAffected == int64(len(keys)), nil
}

func (s *postgresSlots) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND slot IN ?", s.clientID, keys).
		Delete(&SessionSlot{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove slots: %w", err)
	}
	return nil
}
