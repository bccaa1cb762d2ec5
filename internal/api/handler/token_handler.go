package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/investbank/deal-pipeline/internal/api/middleware"
	"github.com/investbank/deal-pipeline/internal/core/token"
)

// TokenHandler exposes token diagnostics. Verify and Decode work on a raw
// token string so operators can inspect credentials without a round trip
// through the resolver.
type TokenHandler struct {
	tokens *token.Service
}

func NewTokenHandler(tokens *token.Service) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

type verifyResponse struct {
	Valid  bool          `json:"valid"`
	Reason string        `json:"reason,omitempty"`
	Claims *token.Claims `json:"claims,omitempty"`
}

type decodeRequest struct {
	Token string `json:"token" validate:"required"`
}

type decodeResponse struct {
	// Verified is always false here: Decode skips signature checks.
	Verified bool          `json:"verified"`
	Claims   *token.Claims `json:"claims"`
}

type principalResponse struct {
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"userId,omitempty"`
	Username      string   `json:"username,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// Verify handles GET /api/token/verify. It runs the full validation on the
// bearer token and reports the failure class instead of a bare 401, which
// makes it usable for debugging expired or mis-signed tokens.
//
// @Summary      Verify the bearer token
// @Tags         token
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  verifyResponse
// @Failure      400  {object}  errorResponse
// @Router       /api/token/verify [get]
func (h *TokenHandler) Verify(c echo.Context) error {
	raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing bearer token")
	}

	claims, err := h.tokens.Validate(raw)
	if err != nil {
		return c.JSON(http.StatusOK, verifyResponse{Valid: false, Reason: err.Error()})
	}
	return c.JSON(http.StatusOK, verifyResponse{Valid: true, Claims: claims})
}

// Decode handles POST /api/token/decode. The claims come back unverified;
// the response says so explicitly.
//
// @Summary      Decode a token without verifying its signature
// @Tags         token
// @Accept       json
// @Produce      json
// @Param        body  body      decodeRequest  true  "Token to decode"
// @Success      200   {object}  decodeResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/token/decode [post]
func (h *TokenHandler) Decode(c echo.Context) error {
	var req decodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	claims, err := h.tokens.Decode(strings.TrimSpace(req.Token))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "token is not a well-formed JWT")
	}
	return c.JSON(http.StatusOK, decodeResponse{Verified: false, Claims: claims})
}

// Me handles GET /api/token/me. It echoes back whatever the identity
// resolver attached to the request, anonymous included.
//
// @Summary      Show the resolved request identity
// @Tags         token
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Router       /api/token/me [get]
func (h *TokenHandler) Me(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return c.JSON(http.StatusOK, principalResponse{Authenticated: false})
	}

	roles := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		roles[i] = string(r)
	}
	return c.JSON(http.StatusOK, principalResponse{
		Authenticated: true,
		UserID:        p.UserID,
		Username:      p.Username,
		Roles:         roles,
	})
}

// bearerToken strips the "Bearer " prefix. Same shape as the resolver's
// extraction so the two never disagree.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
