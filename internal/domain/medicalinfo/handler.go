package medicalinfo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthcare/medinfo/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the resource under api, which is expected to be the
// "/api" group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RolePhysician))
	g.GET("/MedicalInfo", h.ListMedicalInfo)
	g.GET("/MedicalInfo/:id", h.GetMedicalInfo)
	g.POST("/MedicalInfo", h.CreateMedicalInfo)
	g.PUT("/MedicalInfo/:id", h.UpdateMedicalInfo)
	g.DELETE("/MedicalInfo/:id", h.DeleteMedicalInfo)
}

func (h *Handler) CreateMedicalInfo(c echo.Context) error {
	var p CreatePayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.CreateMedicalInfo(c.Request().Context(), &p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) GetMedicalInfo(c echo.Context) error {
	r, err := h.svc.GetMedicalInfo(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListMedicalInfo(c echo.Context) error {
	items, err := h.svc.ListMedicalInfo(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateMedicalInfo(c echo.Context) error {
	var p UpdatePayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateMedicalInfo(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteMedicalInfo(c echo.Context) error {
	if err := h.svc.DeleteMedicalInfo(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
