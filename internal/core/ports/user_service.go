package ports

import (
	"context"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// CreateUserInput carries the data for admin-initiated user creation.
// Unlike self-service registration the role is chosen by the caller.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// UserService defines profile and account-management use cases. The admin
// operations are role-gated at the route level; the service trusts its
// callers there and enforces only data rules.
type UserService interface {
	Profile(ctx context.Context, p *domain.Principal) (*domain.Account, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.Account, error)
	ListUsers(ctx context.Context) ([]*domain.Account, error)
	GetUser(ctx context.Context, id string) (*domain.Account, error)
	SetUserStatus(ctx context.Context, id string, active bool) (*domain.Account, error)
}
