package appointment

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salutdigital/portal/internal/platform/apperr"
	"github.com/salutdigital/portal/internal/platform/auth"
	"github.com/salutdigital/portal/internal/platform/i18n"
	"github.com/salutdigital/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments/catalog", h.Catalog)
	api.POST("/appointments", h.Create)
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.PUT("/appointments/:id", h.Modify)
	api.POST("/appointments/:id/cancel", h.Cancel)
}

func (h *Handler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, CatalogFor(i18n.FromContext(c.Request().Context())))
}

func (h *Handler) Create(c echo.Context) error {
	var f Fields
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.Create(ctx, auth.UserIDFromContext(ctx), f)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := h.svc.List(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.Slice(list, pagination.FromContext(c)))
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), c.Param("id"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Modify(c echo.Context) error {
	var f Fields
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.Modify(ctx, auth.UserIDFromContext(ctx), c.Param("id"), f)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	var snap Snapshot
	if err := c.Bind(&snap); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.Cancel(ctx, auth.UserIDFromContext(ctx), c.Param("id"), snap); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
