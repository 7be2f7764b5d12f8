package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"voiceagent/internal/domain"
)

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

type businessModel struct {
	ID                  int64          `gorm:"column:id;primaryKey"`
	ExternalID          *string        `gorm:"column:external_id;uniqueIndex"`
	Name                string         `gorm:"column:name;not null"`
	Timezone            string         `gorm:"column:timezone;not null"`
	Phone               *string        `gorm:"column:phone"`
	TransferPhone       *string        `gorm:"column:transfer_phone"`
	HoursJSON           datatypes.JSON `gorm:"column:hours_json"`
	PoliciesJSON        datatypes.JSON `gorm:"column:policies_json"`
	CalendarProvider    *string        `gorm:"column:calendar_provider"`
	CalendarAccountID   *string        `gorm:"column:calendar_account_id"`
	CalendarID          *string        `gorm:"column:calendar_id"`
	CalendarOAuthStatus string         `gorm:"column:calendar_oauth_status;not null;default:not_connected"`
	CalendarSettings    datatypes.JSON `gorm:"column:calendar_settings_json"`
	CreatedAt           time.Time      `gorm:"column:created_at"`
}

func (businessModel) TableName() string { return "businesses" }

func toDomainBusiness(m businessModel) *domain.Business {
	b := &domain.Business{
		ID:                 m.ID,
		Name:               m.Name,
		Timezone:           m.Timezone,
		Hours:              []byte(m.HoursJSON),
		Policies:           []byte(m.PoliciesJSON),
		CalendarAuthStatus: domain.CalendarOAuthStatus(m.CalendarOAuthStatus),
		CalendarSettings:   []byte(m.CalendarSettings),
		CreatedAt:          m.CreatedAt,
	}
	b.ExternalID = deref(m.ExternalID)
	b.Phone = deref(m.Phone)
	b.TransferPhone = deref(m.TransferPhone)
	b.CalendarProvider = deref(m.CalendarProvider)
	b.CalendarAccountID = deref(m.CalendarAccountID)
	b.CalendarID = deref(m.CalendarID)
	return b
}

func toBusinessModel(b *domain.Business) businessModel {
	status := string(b.CalendarAuthStatus)
	if status == "" {
		status = string(domain.CalendarNotConnected)
	}
	return businessModel{
		ID:                  b.ID,
		ExternalID:          ref(b.ExternalID),
		Name:                b.Name,
		Timezone:            b.Timezone,
		Phone:               ref(b.Phone),
		TransferPhone:       ref(b.TransferPhone),
		HoursJSON:           datatypes.JSON(b.Hours),
		PoliciesJSON:        datatypes.JSON(b.Policies),
		CalendarProvider:    ref(b.CalendarProvider),
		CalendarAccountID:   ref(b.CalendarAccountID),
		CalendarID:          ref(b.CalendarID),
		CalendarOAuthStatus: status,
		CalendarSettings:    datatypes.JSON(b.CalendarSettings),
		CreatedAt:           b.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	m := toBusinessModel(b)
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBusiness(m)
	return nil
}

func (r *BusinessRepository) Update(ctx context.Context, b *domain.Business) error {
	m := toBusinessModel(b)
	if tx := r.db.WithContext(ctx).Save(&m); tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBusiness(m)
	return nil
}

func (r *BusinessRepository) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	var m businessModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBusiness(m), nil
}

func (r *BusinessRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Business, error) {
	var m businessModel
	tx := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBusiness(m), nil
}

// List returns all tenants. The tenant roster is small (one row per signed-up
// business), so resolution matches against it in memory.
func (r *BusinessRepository) List(ctx context.Context) ([]domain.Business, error) {
	var ms []businessModel
	if tx := r.db.WithContext(ctx).Order("id").Find(&ms); tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Business, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBusiness(m))
	}
	return out, nil
}
