package staff

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salonhub/internal/platform/auth"
)

// OwnershipFunc answers whether the request's user owns the vendor.
type OwnershipFunc func(c echo.Context, vendorID uuid.UUID) (bool, error)

type Handler struct {
	svc       *Service
	ownership OwnershipFunc
}

func NewHandler(svc *Service, ownership OwnershipFunc) *Handler {
	return &Handler{svc: svc, ownership: ownership}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/vendors/:vendorId/staff", h.ListStaff)

	vendorGroup := api.Group("", auth.RequireRole(auth.RoleVendor))
	vendorGroup.POST("/vendors/:vendorId/staff", h.CreateStaff)
	vendorGroup.PUT("/staff/:id", h.UpdateStaff)
	vendorGroup.DELETE("/staff/:id", h.DeactivateStaff)
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

// ListStaff is public: customers use it to pick a specific staff member. An
// optional service_id query filters to members eligible for that service.
func (h *Handler) ListStaff(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	serviceID := uuid.Nil
	if raw := c.QueryParam("service_id"); raw != "" {
		serviceID, err = uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid service_id")
		}
	}
	items, err := h.svc.ListEligible(c.Request().Context(), vendorID, serviceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items, "total": len(items)})
}

func (h *Handler) CreateStaff(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	if err := h.requireOwner(c, vendorID); err != nil {
		return err
	}
	var st Staff
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st.VendorID = vendorID
	if err := h.svc.Create(c.Request().Context(), &st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "staff not found")
	}
	if err := h.requireOwner(c, existing.VendorID); err != nil {
		return err
	}
	var st Staff
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st.ID = id
	st.VendorID = existing.VendorID
	// Activation state only changes through DELETE / re-create.
	st.Active = existing.Active
	if err := h.svc.Update(c.Request().Context(), &st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) DeactivateStaff(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "staff not found")
	}
	if err := h.requireOwner(c, existing.VendorID); err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
