package ports

import (
	"context"

	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// RegisterInput carries the data for self-service registration.
// New registrations always get the USER role.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token   string
	Account *domain.Account
}

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}
