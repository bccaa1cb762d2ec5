package ports

import (
	"context"
	"time"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// CreateDealInput carries all data needed to create a deal. DealValue is the
// restricted field: supplying it requires the ADMIN role.
type CreateDealInput struct {
	DealName          string
	DealType          string
	Status            domain.DealStatus // defaults to INITIATED
	CurrentStage      domain.DealStage
	ClientName        string
	DealValue         *float64
	Currency          string // defaults to USD
	Description       string
	Summary           string
	Sector            string
	Tags              []string
	ExpectedCloseDate *time.Time
}

// UpdateDealInput is a partial update: nil fields are left untouched.
// DealValue non-nil requires ADMIN regardless of ownership.
type UpdateDealInput struct {
	DealName          *string
	DealType          *string
	Status            *domain.DealStatus
	CurrentStage      *domain.DealStage
	ClientName        *string
	DealValue         *float64
	Currency          *string
	Description       *string
	Summary           *string
	Sector            *string
	AssignedTo        *string
	Tags              []string
	ExpectedCloseDate *time.Time
}

// ListDealsInput carries the optional equality filters for listing.
// Ownership scoping is not a caller choice: the service derives it from the
// principal.
type ListDealsInput struct {
	Stage    domain.DealStage
	Sector   string
	DealType string
}

// DealService defines all deal use cases. Every operation takes the request's
// principal explicitly; there is no ambient identity.
type DealService interface {
	Create(ctx context.Context, p *domain.Principal, input CreateDealInput) (*domain.Deal, error)
	List(ctx context.Context, p *domain.Principal, input ListDealsInput) ([]*domain.Deal, error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.Deal, error)
	Update(ctx context.Context, p *domain.Principal, id string, input UpdateDealInput) (*domain.Deal, error)
	UpdateStage(ctx context.Context, p *domain.Principal, id string, stage domain.DealStage) (*domain.Deal, error)
	UpdateValue(ctx context.Context, p *domain.Principal, id string, value float64) (*domain.Deal, error)
	AddNote(ctx context.Context, p *domain.Principal, id string, text string) (*domain.Deal, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
}
