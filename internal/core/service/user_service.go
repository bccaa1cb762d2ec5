package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/investbank/deal-pipeline/internal/core/authz"
	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
)

// UserService implements profile lookup and admin account management.
type UserService struct {
	accounts ports.AccountRepository
	audit    ports.AuditSink
	logger   zerolog.Logger
}

func NewUserService(accounts ports.AccountRepository, audit ports.AuditSink, logger zerolog.Logger) *UserService {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &UserService{accounts: accounts, audit: audit, logger: logger}
}

// Profile returns the principal's own account record.
func (s *UserService) Profile(ctx context.Context, p *domain.Principal) (*domain.Account, error) {
	if p == nil {
		return nil, authz.ErrNoPrincipal
	}
	return s.accounts.FindByUsername(ctx, p.Username)
}

// CreateUser creates an account with an admin-chosen role. Enabled by default.
func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.Account, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidRole(input.Role) {
		return nil, domain.ErrInvalidRole
	}

	if taken, err := s.accounts.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrUsernameTaken
	}
	if taken, err := s.accounts.ExistsByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Roles:        []domain.Role{input.Role},
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Str("role", string(input.Role)).Msg("user created by admin")
	return created, nil
}

// ListUsers returns all accounts.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.FindAll(ctx)
}

// GetUser returns the account with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// SetUserStatus enables or disables an account. A disabled account stops
// resolving to a principal on its next request — outstanding tokens stay
// cryptographically valid, the resolver's live re-check is what locks them
// out.
func (s *UserService) SetUserStatus(ctx context.Context, id string, active bool) (*domain.Account, error) {
	account, err := s.accounts.SetEnabled(ctx, id, active)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", account.Username).Bool("enabled", active).Msg("user status changed")
	s.audit.Record(domain.AuditEvent{
		Subject:   account.Username,
		Action:    "user.set_status",
		Outcome:   domain.AuditOutcomeSuccess,
		Timestamp: time.Now().UTC(),
	})
	return account, nil
}
