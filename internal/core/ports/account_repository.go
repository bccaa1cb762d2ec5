package ports

import (
	"context"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	// SetEnabled toggles the account's enabled flag and returns the updated
	// record. A disabled account must stop resolving to a principal on the
	// very next request.
	SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Account, error)
}
