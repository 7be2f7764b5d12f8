package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"voiceagent/internal/domain"
)

// BookingStore is the single write surface for bookings, customers and the
// idempotency ledger. Multi-step mutations run through Transaction so that an
// availability recheck and the insert it guards see the same snapshot.
type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

type customerModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	BusinessID int64     `gorm:"column:business_id;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	Phone      string    `gorm:"column:phone;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (customerModel) TableName() string { return "customers" }

type bookingModel struct {
	ID                    int64     `gorm:"column:id;primaryKey"`
	BusinessID            int64     `gorm:"column:business_id;not null;index"`
	CustomerID            int64     `gorm:"column:customer_id;not null;index"`
	StartTime             time.Time `gorm:"column:start_time;not null"`
	EndTime               time.Time `gorm:"column:end_time;not null"`
	PartySize             int       `gorm:"column:party_size;not null"`
	Status                string    `gorm:"column:status;not null;index"`
	Notes                 *string   `gorm:"column:notes"`
	Source                string    `gorm:"column:source;not null"`
	ExternalEventID       *string   `gorm:"column:external_event_id;index"`
	ExternalEventProvider *string   `gorm:"column:external_event_provider"`
	CreatedAt             time.Time `gorm:"column:created_at"`
}

func (bookingModel) TableName() string { return "bookings" }

type idempotencyKeyModel struct {
	ID           int64          `gorm:"column:id;primaryKey"`
	Key          string         `gorm:"column:key;not null;uniqueIndex"`
	ResponseJSON datatypes.JSON `gorm:"column:response_json"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (idempotencyKeyModel) TableName() string { return "idempotency_keys" }

func toDomainCustomer(m customerModel) *domain.Customer {
	return &domain.Customer{
		ID:         m.ID,
		BusinessID: m.BusinessID,
		Name:       m.Name,
		Phone:      m.Phone,
		CreatedAt:  m.CreatedAt,
	}
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                    m.ID,
		BusinessID:            m.BusinessID,
		CustomerID:            m.CustomerID,
		StartTime:             m.StartTime,
		EndTime:               m.EndTime,
		PartySize:             m.PartySize,
		Status:                domain.BookingStatus(m.Status),
		Notes:                 deref(m.Notes),
		Source:                m.Source,
		ExternalEventID:       deref(m.ExternalEventID),
		ExternalEventProvider: deref(m.ExternalEventProvider),
		CreatedAt:             m.CreatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                    b.ID,
		BusinessID:            b.BusinessID,
		CustomerID:            b.CustomerID,
		StartTime:             b.StartTime,
		EndTime:               b.EndTime,
		PartySize:             b.PartySize,
		Status:                string(b.Status),
		Notes:                 ref(b.Notes),
		Source:                b.Source,
		ExternalEventID:       ref(b.ExternalEventID),
		ExternalEventProvider: ref(b.ExternalEventProvider),
		CreatedAt:             b.CreatedAt,
	}
}

// Transaction runs fn against a store bound to one database transaction.
// Returning an error rolls back every step.
func (s *BookingStore) Transaction(ctx context.Context, fn func(tx *BookingStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingStore{db: tx})
	})
}

// StoredResponse returns the response persisted under an idempotency key, or
// nil when the key has never been written.
func (s *BookingStore) StoredResponse(ctx context.Context, key string) (json.RawMessage, error) {
	var m idempotencyKeyModel
	tx := s.db.WithContext(ctx).Where("key = ?", key).First(&m)
	if tx.Error != nil {
		if IsNotFound(tx.Error) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return json.RawMessage(m.ResponseJSON), nil
}

func (s *BookingStore) SaveIdempotencyKey(ctx context.Context, key string, response json.RawMessage) error {
	m := idempotencyKeyModel{Key: key, ResponseJSON: datatypes.JSON(response)}
	return s.db.WithContext(ctx).Create(&m).Error
}

// UpdateIdempotencyResponse rewrites the stored payload in place. Only used
// to annotate an already-committed response (calendar sync warnings).
func (s *BookingStore) UpdateIdempotencyResponse(ctx context.Context, key string, response json.RawMessage) error {
	return s.db.WithContext(ctx).
		Model(&idempotencyKeyModel{}).
		Where("key = ?", key).
		Update("response_json", datatypes.JSON(response)).Error
}

func (s *BookingStore) ListCustomers(ctx context.Context, businessID int64) ([]domain.Customer, error) {
	var ms []customerModel
	tx := s.db.WithContext(ctx).Where("business_id = ?", businessID).Order("id").Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Customer, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainCustomer(m))
	}
	return out, nil
}

func (s *BookingStore) SaveCustomer(ctx context.Context, c *domain.Customer) error {
	m := customerModel{
		ID:         c.ID,
		BusinessID: c.BusinessID,
		Name:       c.Name,
		Phone:      c.Phone,
		CreatedAt:  c.CreatedAt,
	}
	if tx := s.db.WithContext(ctx).Save(&m); tx.Error != nil {
		return tx.Error
	}
	*c = *toDomainCustomer(m)
	return nil
}

func (s *BookingStore) CustomerByID(ctx context.Context, businessID, customerID int64) (*domain.Customer, error) {
	var m customerModel
	tx := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, customerID).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainCustomer(m), nil
}

// ListOverlapping returns the confirmed bookings of one business whose
// interval intersects [from, to). Cancelled rows release their capacity and
// never appear here.
func (s *BookingStore) ListOverlapping(ctx context.Context, businessID int64, from, to time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := s.db.WithContext(ctx).
		Where("business_id = ? AND status = ? AND end_time > ? AND start_time < ?",
			businessID, string(domain.BookingConfirmed), from, to).
		Order("start_time").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ListConfirmedBetween returns confirmed bookings starting within [from, to].
func (s *BookingStore) ListConfirmedBetween(ctx context.Context, businessID int64, from, to time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := s.db.WithContext(ctx).
		Where("business_id = ? AND status = ? AND start_time >= ? AND start_time <= ?",
			businessID, string(domain.BookingConfirmed), from, to).
		Order("start_time").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (s *BookingStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if tx := s.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

// BookingForBusiness fetches a booking scoped to its owning tenant. A booking
// belonging to another business yields the same not-found as a missing id.
func (s *BookingStore) BookingForBusiness(ctx context.Context, businessID, bookingID int64) (*domain.Booking, error) {
	var m bookingModel
	tx := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, bookingID).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (s *BookingStore) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if tx := s.db.WithContext(ctx).Save(&m); tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}
