package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/investbank/deal-pipeline/internal/api/metrics"
	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
)

// DealHandler handles HTTP requests for deal operations. All authorization
// and redaction happens inside the service; the handler only moves data.
type DealHandler struct {
	service ports.DealService
}

func NewDealHandler(service ports.DealService) *DealHandler {
	return &DealHandler{service: service}
}

// Create handles POST /api/deals.
//
// @Summary      Create a new deal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDealRequest  true  "Deal details"
// @Success      201   {object}  domain.Deal
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/deals [post]
func (h *DealHandler) Create(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req createDealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deal, err := h.service.Create(c.Request().Context(), p, req.toInput())
	if err != nil {
		return err
	}

	metrics.DealsCreatedTotal.WithLabelValues(deal.DealType).Inc()
	return c.JSON(http.StatusCreated, deal)
}

// List handles GET /api/deals with optional stage/sector/dealType filters.
//
// @Summary      List deals visible to the caller
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        stage     query     string  false  "Pipeline stage filter"
// @Param        sector    query     string  false  "Sector filter"
// @Param        dealType  query     string  false  "Deal type filter"
// @Success      200       {array}   domain.Deal
// @Failure      401       {object}  errorResponse
// @Router       /api/deals [get]
func (h *DealHandler) List(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	deals, err := h.service.List(c.Request().Context(), p, ports.ListDealsInput{
		Stage:    domain.DealStage(c.QueryParam("stage")),
		Sector:   c.QueryParam("sector"),
		DealType: c.QueryParam("dealType"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deals)
}

// Get handles GET /api/deals/:id.
//
// @Summary      Get a deal by id
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Deal id"
// @Success      200  {object}  domain.Deal
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/deals/{id} [get]
func (h *DealHandler) Get(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	deal, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deal)
}

// Update handles PUT /api/deals/:id.
//
// @Summary      Update a deal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Deal id"
// @Param        body  body      updateDealRequest  true  "Fields to update"
// @Success      200   {object}  domain.Deal
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/deals/{id} [put]
func (h *DealHandler) Update(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req updateDealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deal, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deal)
}

// UpdateStage handles PUT /api/deals/:id/stage.
//
// @Summary      Move a deal to another pipeline stage
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Deal id"
// @Param        body  body      updateStageRequest  true  "Target stage"
// @Success      200   {object}  domain.Deal
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/deals/{id}/stage [put]
func (h *DealHandler) UpdateStage(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req updateStageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deal, err := h.service.UpdateStage(c.Request().Context(), p, c.Param("id"), domain.DealStage(req.Stage))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deal)
}

// UpdateValue handles PUT /api/deals/:id/value. ADMIN only.
//
// @Summary      Set the restricted deal value
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Deal id"
// @Param        body  body      updateValueRequest  true  "New value"
// @Success      200   {object}  domain.Deal
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/deals/{id}/value [put]
func (h *DealHandler) UpdateValue(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req updateValueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deal, err := h.service.UpdateValue(c.Request().Context(), p, c.Param("id"), req.DealValue)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deal)
}

// AddNote handles POST /api/deals/:id/notes.
//
// @Summary      Add a note to a deal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Deal id"
// @Param        body  body      addNoteRequest  true  "Note text"
// @Success      200   {object}  domain.Deal
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/deals/{id}/notes [post]
func (h *DealHandler) AddNote(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req addNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deal, err := h.service.AddNote(c.Request().Context(), p, c.Param("id"), req.NoteText)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deal)
}

// Delete handles DELETE /api/deals/:id. ADMIN only.
//
// @Summary      Delete a deal
// @Tags         deals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Deal id"
// @Success      204  "deleted"
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/deals/{id} [delete]
func (h *DealHandler) Delete(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
