package tenant

import (
	"context"

	"voiceagent/internal/domain"
)

// BusinessDirectory lists the tenant roster for in-memory matching.
type BusinessDirectory interface {
	List(ctx context.Context) ([]domain.Business, error)
}
