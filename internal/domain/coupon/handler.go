package coupon

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salonhub/internal/platform/auth"
	"github.com/salonhub/salonhub/pkg/pagination"
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
	api.GET("/vendors/:vendorId/coupons/validate", h.ValidateCoupon, auth.RequireRole(auth.RoleCustomer))

	vendorGroup := api.Group("", auth.RequireRole(auth.RoleVendor))
	vendorGroup.POST("/vendors/:vendorId/coupons", h.CreateCoupon)
	vendorGroup.GET("/vendors/:vendorId/coupons", h.ListCoupons)
	vendorGroup.DELETE("/coupons/:id", h.DeactivateCoupon)
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

func (h *Handler) CreateCoupon(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	if err := h.requireOwner(c, vendorID); err != nil {
		return err
	}
	var cp Coupon
	if err := c.Bind(&cp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cp.VendorID = vendorID
	if err := h.svc.Create(c.Request().Context(), &cp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *Handler) ListCoupons(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	if err := h.requireOwner(c, vendorID); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByVendor(c.Request().Context(), vendorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// ValidateCoupon lets a customer price-check a code before booking.
func (h *Handler) ValidateCoupon(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	var amount int64
	if err := echo.QueryParamsBinder(c).Int64("amount_cents", &amount).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid amount_cents")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	discount, err := h.svc.Quote(c.Request().Context(), code, vendorID, customerID, amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":           NormalizeCode(code),
		"discount_cents": discount,
	})
}

func (h *Handler) DeactivateCoupon(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if err := h.requireOwner(c, cp.VendorID); err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	return c.NoContent(http.StatusNoContent)
}
