package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/investbank/deal-pipeline/internal/api/middleware"
	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
)

type stubDealService struct {
	createFn      func(ctx context.Context, p *domain.Principal, input ports.CreateDealInput) (*domain.Deal, error)
	listFn        func(ctx context.Context, p *domain.Principal, input ports.ListDealsInput) ([]*domain.Deal, error)
	getFn         func(ctx context.Context, p *domain.Principal, id string) (*domain.Deal, error)
	updateFn      func(ctx context.Context, p *domain.Principal, id string, input ports.UpdateDealInput) (*domain.Deal, error)
	updateStageFn func(ctx context.Context, p *domain.Principal, id string, stage domain.DealStage) (*domain.Deal, error)
	updateValueFn func(ctx context.Context, p *domain.Principal, id string, value float64) (*domain.Deal, error)
	addNoteFn     func(ctx context.Context, p *domain.Principal, id, text string) (*domain.Deal, error)
	deleteFn      func(ctx context.Context, p *domain.Principal, id string) error
}

func (s *stubDealService) Create(ctx context.Context, p *domain.Principal, input ports.CreateDealInput) (*domain.Deal, error) {
	return s.createFn(ctx, p, input)
}

func (s *stubDealService) List(ctx context.Context, p *domain.Principal, input ports.ListDealsInput) ([]*domain.Deal, error) {
	return s.listFn(ctx, p, input)
}

func (s *stubDealService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Deal, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubDealService) Update(ctx context.Context, p *domain.Principal, id string, input ports.UpdateDealInput) (*domain.Deal, error) {
	return s.updateFn(ctx, p, id, input)
}

func (s *stubDealService) UpdateStage(ctx context.Context, p *domain.Principal, id string, stage domain.DealStage) (*domain.Deal, error) {
	return s.updateStageFn(ctx, p, id, stage)
}

func (s *stubDealService) UpdateValue(ctx context.Context, p *domain.Principal, id string, value float64) (*domain.Deal, error) {
	return s.updateValueFn(ctx, p, id, value)
}

func (s *stubDealService) AddNote(ctx context.Context, p *domain.Principal, id, text string) (*domain.Deal, error) {
	return s.addNoteFn(ctx, p, id, text)
}

func (s *stubDealService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

func TestDealHandler_Create_Success(t *testing.T) {
	alice := &domain.Principal{UserID: "u1", Username: "alice", Roles: []domain.Role{domain.RoleUser}}
	stub := &stubDealService{
		createFn: func(ctx context.Context, p *domain.Principal, input ports.CreateDealInput) (*domain.Deal, error) {
			if p != alice {
				t.Fatal("principal not passed through")
			}
			if input.DealName != "Project Atlas" || input.DealType != "M&A" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Deal{ID: "d1", DealName: input.DealName, DealType: input.DealType}, nil
		},
	}
	handler := NewDealHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/api/deals",
		`{"dealName":"Project Atlas","dealType":"M&A","clientName":"Acme Corp"}`)
	middleware.SetPrincipal(c, alice)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var deal domain.Deal
	if err := json.Unmarshal(rec.Body.Bytes(), &deal); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if deal.ID != "d1" {
		t.Fatalf("unexpected deal: %+v", deal)
	}
}

func TestDealHandler_Create_NoPrincipal(t *testing.T) {
	handler := NewDealHandler(&stubDealService{
		createFn: func(ctx context.Context, p *domain.Principal, input ports.CreateDealInput) (*domain.Deal, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/api/deals",
		`{"dealName":"Project Atlas","dealType":"M&A","clientName":"Acme Corp"}`)

	err := handler.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDealHandler_Create_InvalidStage(t *testing.T) {
	handler := NewDealHandler(&stubDealService{
		createFn: func(ctx context.Context, p *domain.Principal, input ports.CreateDealInput) (*domain.Deal, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/api/deals",
		`{"dealName":"Project Atlas","dealType":"M&A","clientName":"Acme Corp","currentStage":"Daydreaming"}`)
	middleware.SetPrincipal(c, &domain.Principal{UserID: "u1", Username: "alice", Roles: []domain.Role{domain.RoleUser}})

	err := handler.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestDealHandler_List_PassesFilters(t *testing.T) {
	alice := &domain.Principal{UserID: "u1", Username: "alice", Roles: []domain.Role{domain.RoleUser}}
	stub := &stubDealService{
		listFn: func(ctx context.Context, p *domain.Principal, input ports.ListDealsInput) ([]*domain.Deal, error) {
			if input.Stage != domain.StageProspect || input.Sector != "tech" {
				t.Fatalf("filters not passed through: %+v", input)
			}
			return []*domain.Deal{{ID: "d1"}}, nil
		},
	}
	handler := NewDealHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/api/deals?stage=Prospect&sector=tech", "")
	middleware.SetPrincipal(c, alice)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDealHandler_Get_Forbidden(t *testing.T) {
	stub := &stubDealService{
		getFn: func(ctx context.Context, p *domain.Principal, id string) (*domain.Deal, error) {
			return nil, domain.ErrForbidden
		},
	}
	handler := NewDealHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/api/deals/d1", "")
	c.SetParamNames("id")
	c.SetParamValues("d1")
	middleware.SetPrincipal(c, &domain.Principal{UserID: "u2", Username: "bruce", Roles: []domain.Role{domain.RoleUser}})

	err := handler.Get(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDealHandler_UpdateStage_RejectsUnknownStage(t *testing.T) {
	handler := NewDealHandler(&stubDealService{
		updateStageFn: func(ctx context.Context, p *domain.Principal, id string, stage domain.DealStage) (*domain.Deal, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPut, "/api/deals/d1/stage", `{"stage":"Shipped"}`)
	c.SetParamNames("id")
	c.SetParamValues("d1")
	middleware.SetPrincipal(c, &domain.Principal{UserID: "u1", Username: "alice", Roles: []domain.Role{domain.RoleUser}})

	err := handler.UpdateStage(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestDealHandler_UpdateValue_PassesValue(t *testing.T) {
	root := &domain.Principal{UserID: "u9", Username: "root", Roles: []domain.Role{domain.RoleAdmin}}
	stub := &stubDealService{
		updateValueFn: func(ctx context.Context, p *domain.Principal, id string, value float64) (*domain.Deal, error) {
			if id != "d1" || value != 2500000 {
				t.Fatalf("unexpected args: %s %f", id, value)
			}
			v := value
			return &domain.Deal{ID: id, DealValue: &v}, nil
		},
	}
	handler := NewDealHandler(stub)

	c, rec := newTestContext(t, http.MethodPut, "/api/deals/d1/value", `{"dealValue":2500000}`)
	c.SetParamNames("id")
	c.SetParamValues("d1")
	middleware.SetPrincipal(c, root)

	if err := handler.UpdateValue(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDealHandler_Delete_Success(t *testing.T) {
	root := &domain.Principal{UserID: "u9", Username: "root", Roles: []domain.Role{domain.RoleAdmin}}
	deleted := false
	stub := &stubDealService{
		deleteFn: func(ctx context.Context, p *domain.Principal, id string) error {
			deleted = true
			return nil
		},
	}
	handler := NewDealHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/api/deals/d1", "")
	c.SetParamNames("id")
	c.SetParamValues("d1")
	middleware.SetPrincipal(c, root)

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || !deleted {
		t.Fatalf("expected 204 and deletion, got %d deleted=%v", rec.Code, deleted)
	}
}

func TestDealHandler_AddNote_RequiresText(t *testing.T) {
	handler := NewDealHandler(&stubDealService{
		addNoteFn: func(ctx context.Context, p *domain.Principal, id, text string) (*domain.Deal, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/api/deals/d1/notes", `{"noteText":""}`)
	c.SetParamNames("id")
	c.SetParamValues("d1")
	middleware.SetPrincipal(c, &domain.Principal{UserID: "u1", Username: "alice", Roles: []domain.Role{domain.RoleUser}})

	err := handler.AddNote(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
