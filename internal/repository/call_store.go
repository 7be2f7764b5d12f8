package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"voiceagent/internal/domain"
)

type CallStore struct {
	db *gorm.DB
}

func NewCallStore(db *gorm.DB) *CallStore {
	return &CallStore{db: db}
}

type callModel struct {
	ID             int64          `gorm:"column:id;primaryKey"`
	ExternalCallID string         `gorm:"column:external_call_id;not null;uniqueIndex"`
	BusinessID     *int64         `gorm:"column:business_id;index"`
	StartedAt      *time.Time     `gorm:"column:started_at"`
	EndedAt        *time.Time     `gorm:"column:ended_at"`
	Outcome        *string        `gorm:"column:outcome;index"`
	RawEventsJSON  datatypes.JSON `gorm:"column:raw_events_json"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
}

func (callModel) TableName() string { return "calls" }

func toDomainCall(m callModel) (*domain.Call, error) {
	c := &domain.Call{
		ID:             m.ID,
		ExternalCallID: m.ExternalCallID,
		BusinessID:     m.BusinessID,
		StartedAt:      m.StartedAt,
		EndedAt:        m.EndedAt,
		Outcome:        deref(m.Outcome),
		CreatedAt:      m.CreatedAt,
	}
	if len(m.RawEventsJSON) > 0 {
		if err := json.Unmarshal(m.RawEventsJSON, &c.Events); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func toCallModel(c *domain.Call) (callModel, error) {
	events, err := json.Marshal(c.Events)
	if err != nil {
		return callModel{}, err
	}
	return callModel{
		ID:             c.ID,
		ExternalCallID: c.ExternalCallID,
		BusinessID:     c.BusinessID,
		StartedAt:      c.StartedAt,
		EndedAt:        c.EndedAt,
		Outcome:        ref(c.Outcome),
		RawEventsJSON:  datatypes.JSON(events),
		CreatedAt:      c.CreatedAt,
	}, nil
}

func (s *CallStore) Transaction(ctx context.Context, fn func(tx *CallStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CallStore{db: tx})
	})
}

// ByExternalID returns the call row for an external call id, or nil when no
// event has been recorded yet.
func (s *CallStore) ByExternalID(ctx context.Context, externalCallID string) (*domain.Call, error) {
	var m callModel
	tx := s.db.WithContext(ctx).Where("external_call_id = ?", externalCallID).First(&m)
	if tx.Error != nil {
		if IsNotFound(tx.Error) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainCall(m)
}

func (s *CallStore) Create(ctx context.Context, c *domain.Call) error {
	m, err := toCallModel(c)
	if err != nil {
		return err
	}
	if tx := s.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	restored, err := toDomainCall(m)
	if err != nil {
		return err
	}
	*c = *restored
	return nil
}

func (s *CallStore) Update(ctx context.Context, c *domain.Call) error {
	m, err := toCallModel(c)
	if err != nil {
		return err
	}
	if tx := s.db.WithContext(ctx).Save(&m); tx.Error != nil {
		return tx.Error
	}
	restored, err := toDomainCall(m)
	if err != nil {
		return err
	}
	*c = *restored
	return nil
}
