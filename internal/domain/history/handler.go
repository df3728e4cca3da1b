package history

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salutdigital/portal/internal/domain/export"
	"github.com/salutdigital/portal/internal/platform/apperr"
	"github.com/salutdigital/portal/internal/platform/auth"
	"github.com/salutdigital/portal/internal/platform/i18n"
	"github.com/salutdigital/portal/pkg/pagination"
)

type Handler struct {
	agg      *Aggregator
	pdf      *export.PDFExporter
	workbook export.WorkbookExporter
}

func NewHandler(agg *Aggregator, pdf *export.PDFExporter) *Handler {
	return &Handler{agg: agg, pdf: pdf}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/history", h.List)
	api.GET("/history/xlsx", h.Workbook)
	api.GET("/history/:id/pdf", h.PDF)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	records, err := h.agg.List(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.Slice(records, pagination.FromContext(c)))
}

func (h *Handler) PDF(c echo.Context) error {
	ctx := c.Request().Context()
	uid := auth.UserIDFromContext(ctx)
	rec, err := h.agg.Get(ctx, uid, c.Param("id"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	p, err := h.agg.Profile(ctx, uid)
	if err != nil {
		return apperr.HTTPError(err)
	}
	art, err := h.pdf.Export(ctx, i18n.FromContext(ctx), Report(p, *rec))
	if err != nil {
		return err
	}
	return attachment(c, art)
}

func (h *Handler) Workbook(c echo.Context) error {
	ctx := c.Request().Context()
	uid := auth.UserIDFromContext(ctx)
	records, err := h.agg.List(ctx, uid)
	if err != nil {
		return apperr.HTTPError(err)
	}
	p, err := h.agg.Profile(ctx, uid)
	if err != nil {
		return apperr.HTTPError(err)
	}
	art, err := h.workbook.Export(i18n.FromContext(ctx), Report(p, records...))
	if err != nil {
		return err
	}
	return attachment(c, art)
}

func attachment(c echo.Context, art *export.Artifact) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", art.Filename))
	return c.Blob(http.StatusOK, art.ContentType, art.Body)
}
