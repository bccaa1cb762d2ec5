package ports

import (
	"context"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// DealFilter carries the query parameters for listing deals.
// CreatedBy is the ownership scope: empty = unscoped (admin); non-empty =
// only deals created by that user. The scope is enforced inside the
// repository query, not as an in-memory pass over all records.
type DealFilter struct {
	CreatedBy string
	Stage     domain.DealStage // optional
	Sector    string           // optional
	DealType  string           // optional
}

// DealRepository defines persistence operations for deals.
type DealRepository interface {
	Create(ctx context.Context, deal *domain.Deal) (*domain.Deal, error)
	FindByID(ctx context.Context, id string) (*domain.Deal, error)
	List(ctx context.Context, filter DealFilter) ([]*domain.Deal, error)
	Update(ctx context.Context, deal *domain.Deal) (*domain.Deal, error)
	Delete(ctx context.Context, id string) error
}
