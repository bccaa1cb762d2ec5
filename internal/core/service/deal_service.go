package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/investbank/deal-pipeline/internal/core/authz"
	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
)

const defaultCurrency = "USD"

// DealService orchestrates deal operations. It is deliberately thin: every
// decision goes through the authz package, and every outbound deal goes
// through authz.RedactDeal. Ordering within a request is fixed — decision,
// then data operation, then redaction.
type DealService struct {
	deals  ports.DealRepository
	audit  ports.AuditSink
	logger zerolog.Logger
}

func NewDealService(deals ports.DealRepository, audit ports.AuditSink, logger zerolog.Logger) *DealService {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &DealService{deals: deals, audit: audit, logger: logger}
}

// Create creates a deal owned by the principal. Supplying the restricted
// value requires ADMIN.
func (s *DealService) Create(ctx context.Context, p *domain.Principal, input ports.CreateDealInput) (*domain.Deal, error) {
	dec, err := authz.CanCreate(p, input.DealValue != nil)
	if err != nil {
		return nil, err
	}
	if !dec.Allow {
		return nil, s.deny(p, "deal.create", dec)
	}

	status := input.Status
	if status == "" {
		status = domain.StatusInitiated
	}
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	if input.CurrentStage != "" && !domain.ValidStage(input.CurrentStage) {
		return nil, domain.ErrInvalidStage
	}
	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	now := time.Now().UTC()
	deal := &domain.Deal{
		DealName:           input.DealName,
		DealType:           input.DealType,
		Status:             status,
		CurrentStage:       input.CurrentStage,
		ClientName:         input.ClientName,
		DealValue:          input.DealValue,
		Currency:           currency,
		Description:        input.Description,
		Summary:            input.Summary,
		Sector:             input.Sector,
		AssignedTo:         p.UserID,
		AssignedToUsername: p.Username,
		CreatedBy:          p.UserID,
		CreatedByUsername:  p.Username,
		Tags:               input.Tags,
		Notes:              []domain.Note{},
		ExpectedCloseDate:  input.ExpectedCloseDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.deals.Create(ctx, deal)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create deal")
		return nil, err
	}

	s.logger.Info().Str("deal_id", created.ID).Str("created_by", p.Username).Msg("deal created")
	return authz.RedactDeal(created, readDecision(p)), nil
}

// List returns the deals visible to the principal, optionally filtered.
// Non-admin callers are scoped to their own deals inside the query.
func (s *DealService) List(ctx context.Context, p *domain.Principal, input ports.ListDealsInput) ([]*domain.Deal, error) {
	if p == nil {
		return nil, authz.ErrNoPrincipal
	}
	if input.Stage != "" && !domain.ValidStage(input.Stage) {
		return nil, domain.ErrInvalidStage
	}

	deals, err := s.deals.List(ctx, ports.DealFilter{
		CreatedBy: authz.ListScope(p),
		Stage:     input.Stage,
		Sector:    input.Sector,
		DealType:  input.DealType,
	})
	if err != nil {
		return nil, err
	}

	return authz.RedactDeals(deals, readDecision(p)), nil
}

// Get returns a single deal. The record is looked up before the ownership
// check, so a missing id yields not-found even for callers who could not
// have read it; a present but foreign deal yields a denial.
func (s *DealService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Deal, error) {
	if p == nil {
		return nil, authz.ErrNoPrincipal
	}

	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec, err := authz.CanRead(p, deal.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !dec.Allow {
		return nil, s.deny(p, "deal.read", dec)
	}

	return authz.RedactDeal(deal, dec), nil
}

// Update applies a partial update. Ownership or ADMIN is required; touching
// the restricted value requires ADMIN even for the owner.
func (s *DealService) Update(ctx context.Context, p *domain.Principal, id string, input ports.UpdateDealInput) (*domain.Deal, error) {
	if p == nil {
		return nil, authz.ErrNoPrincipal
	}
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, domain.ErrInvalidStatus
	}
	if input.CurrentStage != nil && !domain.ValidStage(*input.CurrentStage) {
		return nil, domain.ErrInvalidStage
	}

	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec, err := authz.CanUpdate(p, deal.CreatedBy, input.DealValue != nil)
	if err != nil {
		return nil, err
	}
	if !dec.Allow {
		return nil, s.deny(p, "deal.update", dec)
	}

	applyDealUpdate(deal, input)
	deal.UpdatedAt = time.Now().UTC()

	updated, err := s.deals.Update(ctx, deal)
	if err != nil {
		return nil, err
	}
	return authz.RedactDeal(updated, dec), nil
}

// UpdateStage moves a deal through the pipeline. Moving to Closed stamps the
// actual close date and flips the status to CLOSED; moving to Lost flips the
// status to CANCELLED.
func (s *DealService) UpdateStage(ctx context.Context, p *domain.Principal, id string, stage domain.DealStage) (*domain.Deal, error) {
	if p == nil {
		return nil, authz.ErrNoPrincipal
	}
	if !domain.ValidStage(stage) {
		return nil, domain.ErrInvalidStage
	}

	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec, err := authz.CanUpdate(p, deal.CreatedBy, false)
	if err != nil {
		return nil, err
	}
	if !dec.Allow {
		return nil, s.deny(p, "deal.update_stage", dec)
	}

	now := time.Now().UTC()
	deal.CurrentStage = stage
	switch stage {
	case domain.StageClosed:
		deal.Status = domain.StatusClosed
		deal.ActualCloseDate = &now
	case domain.StageLost:
		deal.Status = domain.StatusCancelled
	}
	deal.UpdatedAt = now

	updated, err := s.deals.Update(ctx, deal)
	if err != nil {
		return nil, err
	}
	return authz.RedactDeal(updated, dec), nil
}

// UpdateValue sets the restricted deal value. The role gate runs before the
// deal is loaded: a non-admin caller never learns whether the id exists.
func (s *DealService) UpdateValue(ctx context.Context, p *domain.Principal, id string, value float64) (*domain.Deal, error) {
	dec, err := authz.CanSetValue(p)
	if err != nil {
		return nil, err
	}
	if !dec.Allow {
		return nil, s.deny(p, "deal.update_value", dec)
	}

	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deal.DealValue = &value
	deal.UpdatedAt = time.Now().UTC()

	updated, err := s.deals.Update(ctx, deal)
	if err != nil {
		return nil, err
	}
	return authz.RedactDeal(updated, dec), nil
}

// AddNote appends a note authored by the principal.
func (s *DealService) AddNote(ctx context.Context, p *domain.Principal, id string, text string) (*domain.Deal, error) {
	if p == nil {
		return nil, authz.ErrNoPrincipal
	}

	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec, err := authz.CanAnnotate(p, deal.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !dec.Allow {
		return nil, s.deny(p, "deal.add_note", dec)
	}

	now := time.Now().UTC()
	deal.Notes = append(deal.Notes, domain.Note{
		UserID:    p.UserID,
		Username:  p.Username,
		NoteText:  text,
		Timestamp: now,
	})
	deal.UpdatedAt = now

	updated, err := s.deals.Update(ctx, deal)
	if err != nil {
		return nil, err
	}
	return authz.RedactDeal(updated, dec), nil
}

// Delete removes a deal. ADMIN only; the role gate runs before the lookup.
func (s *DealService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	dec, err := authz.CanDelete(p)
	if err != nil {
		return err
	}
	if !dec.Allow {
		return s.deny(p, "deal.delete", dec)
	}

	if _, err := s.deals.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.deals.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("deal_id", id).Str("deleted_by", p.Username).Msg("deal deleted")
	return nil
}

// deny logs and audits an authorization denial, then returns the single
// caller-facing denial error. The internal reason never leaves the process.
func (s *DealService) deny(p *domain.Principal, action string, dec authz.Decision) error {
	s.logger.Warn().Str("username", p.Username).Str("action", action).Str("reason", dec.Reason).Msg("authorization denied")
	s.audit.Record(domain.AuditEvent{
		Subject:   p.Username,
		Action:    action,
		Outcome:   domain.AuditOutcomeDenied,
		Reason:    dec.Reason,
		Timestamp: time.Now().UTC(),
	})
	return domain.ErrForbidden
}

// readDecision derives the redaction posture for a deal the principal is
// already entitled to receive (just created, or listed under their scope).
func readDecision(p *domain.Principal) authz.Decision {
	if p.IsAdmin() {
		return authz.Decision{Allow: true}
	}
	return authz.Decision{Allow: true, RedactValue: true}
}

func applyDealUpdate(deal *domain.Deal, input ports.UpdateDealInput) {
	if input.DealName != nil {
		deal.DealName = *input.DealName
	}
	if input.DealType != nil {
		deal.DealType = *input.DealType
	}
	if input.Status != nil {
		deal.Status = *input.Status
	}
	if input.CurrentStage != nil {
		deal.CurrentStage = *input.CurrentStage
	}
	if input.ClientName != nil {
		deal.ClientName = *input.ClientName
	}
	if input.DealValue != nil {
		deal.DealValue = input.DealValue
	}
	if input.Currency != nil {
		deal.Currency = *input.Currency
	}
	if input.Description != nil {
		deal.Description = *input.Description
	}
	if input.Summary != nil {
		deal.Summary = *input.Summary
	}
	if input.Sector != nil {
		deal.Sector = *input.Sector
	}
	if input.AssignedTo != nil {
		deal.AssignedTo = *input.AssignedTo
	}
	if input.Tags != nil {
		deal.Tags = input.Tags
	}
	if input.ExpectedCloseDate != nil {
		deal.ExpectedCloseDate = input.ExpectedCloseDate
	}
}
