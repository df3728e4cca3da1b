package profile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salutdigital/portal/internal/domain/validation"
	"github.com/salutdigital/portal/internal/platform/apperr"
	"github.com/salutdigital/portal/internal/platform/auth"
	"github.com/salutdigital/portal/internal/platform/i18n"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/profile", h.Get)
	api.PUT("/profile", h.Update)
	api.POST("/account/precheck", h.Precheck)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	saved, err := h.svc.Update(ctx, auth.UserIDFromContext(ctx), i18n.FromContext(ctx), p)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

type precheckRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Precheck validates sign-up credentials before the client hands them to the
// identity provider. The password is never stored or logged.
func (h *Handler) Precheck(c echo.Context) error {
	var req precheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	errs := validation.CredentialErrors(i18n.FromContext(c.Request().Context()), req.Email, req.Password)
	if len(errs) > 0 {
		return apperr.HTTPError(&apperr.ValidationError{Fields: errs})
	}
	return c.JSON(http.StatusOK, map[string]bool{"valid": true})
}
