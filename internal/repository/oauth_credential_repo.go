package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"voiceagent/internal/domain"
)

type OAuthCredentialRepository struct {
	db *gorm.DB
}

func NewOAuthCredentialRepository(db *gorm.DB) *OAuthCredentialRepository {
	return &OAuthCredentialRepository{db: db}
}

type oauthCredentialModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	BusinessID   int64      `gorm:"column:business_id;not null;uniqueIndex"`
	RefreshToken string     `gorm:"column:refresh_token;not null"`
	AccessToken  *string    `gorm:"column:access_token"`
	TokenExpiry  *time.Time `gorm:"column:token_expiry"`
	Scopes       *string    `gorm:"column:scopes"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (oauthCredentialModel) TableName() string { return "google_oauth_credentials" }

func toDomainCredential(m oauthCredentialModel) *domain.OAuthCredential {
	return &domain.OAuthCredential{
		ID:           m.ID,
		BusinessID:   m.BusinessID,
		RefreshToken: m.RefreshToken,
		AccessToken:  deref(m.AccessToken),
		TokenExpiry:  m.TokenExpiry,
		Scopes:       deref(m.Scopes),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *OAuthCredentialRepository) GetByBusiness(ctx context.Context, businessID int64) (*domain.OAuthCredential, error) {
	var m oauthCredentialModel
	tx := r.db.WithContext(ctx).Where("business_id = ?", businessID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainCredential(m), nil
}

func (r *OAuthCredentialRepository) Save(ctx context.Context, c *domain.OAuthCredential) error {
	m := oauthCredentialModel{
		ID:           c.ID,
		BusinessID:   c.BusinessID,
		RefreshToken: c.RefreshToken,
		AccessToken:  ref(c.AccessToken),
		TokenExpiry:  c.TokenExpiry,
		Scopes:       ref(c.Scopes),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if tx := r.db.WithContext(ctx).Save(&m); tx.Error != nil {
		return tx.Error
	}
	*c = *toDomainCredential(m)
	return nil
}
