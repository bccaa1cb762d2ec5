package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
	"github.com/investbank/deal-pipeline/internal/core/token"
)

// AuthService implements registration and login.
type AuthService struct {
	accounts ports.AccountRepository
	tokens   *token.Service
	audit    ports.AuditSink
	logger   zerolog.Logger
}

func NewAuthService(accounts ports.AccountRepository, tokens *token.Service, audit ports.AuditSink, logger zerolog.Logger) *AuthService {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &AuthService{accounts: accounts, tokens: tokens, audit: audit, logger: logger}
}

// Register creates a USER account and issues a session token for it.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
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
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Roles:        []domain.Role{domain.RoleUser},
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(created.Username, created.Roles)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Msg("account registered")
	s.audit.Record(domain.AuditEvent{
		Subject:   created.Username,
		Action:    "auth.register",
		Outcome:   domain.AuditOutcomeSuccess,
		Timestamp: now,
	})

	return &ports.AuthResult{Token: signed, Account: created}, nil
}

// Login verifies credentials and issues a session token. Unknown users and
// wrong passwords collapse into one error so that the response does not
// reveal which half failed. Disabled accounts are rejected before the
// password check.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordLoginFailure(username, "unknown user")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.Enabled {
		s.recordLoginFailure(username, "account disabled")
		return nil, domain.ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.recordLoginFailure(username, "bad password")
		return nil, domain.ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(account.Username, account.Roles)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEvent{
		Subject:   account.Username,
		Action:    "auth.login",
		Outcome:   domain.AuditOutcomeSuccess,
		Timestamp: time.Now().UTC(),
	})

	return &ports.AuthResult{Token: signed, Account: account}, nil
}

func (s *AuthService) recordLoginFailure(username, reason string) {
	s.logger.Warn().Str("username", username).Str("reason", reason).Msg("login rejected")
	s.audit.Record(domain.AuditEvent{
		Subject:   username,
		Action:    "auth.login",
		Outcome:   domain.AuditOutcomeFailure,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}
