package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salonhub/internal/platform/auth"
	"github.com/salonhub/salonhub/pkg/pagination"
)

// OwnershipFunc answers whether the request's user owns the vendor. Wired to
// the vendor service at startup; keeps this package from importing it.
type OwnershipFunc func(c echo.Context, vendorID uuid.UUID) (bool, error)

type Handler struct {
	svc       *CatalogService
	ownership OwnershipFunc
}

func NewHandler(svc *CatalogService, ownership OwnershipFunc) *Handler {
	return &Handler{svc: svc, ownership: ownership}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/vendors/:vendorId/services", h.ListServices)
	api.GET("/services/:id", h.GetService)

	vendorGroup := api.Group("", auth.RequireRole(auth.RoleVendor))
	vendorGroup.POST("/vendors/:vendorId/services", h.CreateService)
	vendorGroup.PUT("/services/:id", h.UpdateService)
	vendorGroup.DELETE("/services/:id", h.DeactivateService)
}

func (h *Handler) requireOwner(c echo.Context, vendorID uuid.UUID) error {
	ok, err := h.ownership(c, vendorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "vendor not found")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "not your vendor profile")
	}
	return nil
}

func (h *Handler) CreateService(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	if err := h.requireOwner(c, vendorID); err != nil {
		return err
	}
	var svc Service
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	svc.VendorID = vendorID
	if err := h.svc.Create(c.Request().Context(), &svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *Handler) GetService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	svc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) ListServices(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	pg := pagination.FromContext(c)
	// Customers only see active services; the owning vendor sees everything.
	activeOnly := true
	if ok, err := h.ownership(c, vendorID); err == nil && ok {
		activeOnly = false
	}
	items, total, err := h.svc.ListByVendor(c.Request().Context(), vendorID, activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	if err := h.requireOwner(c, existing.VendorID); err != nil {
		return err
	}
	var svc Service
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	svc.ID = id
	svc.VendorID = existing.VendorID
	if err := h.svc.Update(c.Request().Context(), &svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) DeactivateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	if err := h.requireOwner(c, existing.VendorID); err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
