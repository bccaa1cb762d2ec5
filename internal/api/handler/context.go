package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/investbank/deal-pipeline/internal/api/middleware"
	"github.com/investbank/deal-pipeline/internal/core/domain"
)

// requirePrincipal returns the principal the resolver attached to this
// request. Routes calling it sit behind RequireAuth, so a nil principal here
// means the middleware chain is miswired — reject rather than proceed.
func requirePrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}
