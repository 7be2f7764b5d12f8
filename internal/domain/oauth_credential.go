package domain

import "time"

// OAuthCredential holds the Google tokens for one business. At most one row
// per business; the connection flow that writes it lives outside this service.
type OAuthCredential struct {
	ID           int64      `json:"id"`
	BusinessID   int64      `json:"business_id"`
	RefreshToken string     `json:"-"`
	AccessToken  string     `json:"-"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
	Scopes       string     `json:"scopes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
