package domain

import "time"

// Customer is identified by (business, phone). Created lazily on the first
// booking for a phone number within a business.
type Customer struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}
