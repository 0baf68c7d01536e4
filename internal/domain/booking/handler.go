package booking

import (
	"net/http"
	"time"

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
	api.GET("/vendors/:vendorId/availability", h.GetAvailability)

	api.POST("/bookings", h.CreateBooking, auth.RequireRole(auth.RoleCustomer))
	api.GET("/bookings", h.ListMyBookings, auth.RequireRole(auth.RoleCustomer))
	api.GET("/bookings/:id", h.GetBooking)
	api.POST("/bookings/:id/cancel", h.CancelBooking)

	vendorGroup := api.Group("", auth.RequireRole(auth.RoleVendor))
	vendorGroup.GET("/vendors/:vendorId/bookings", h.ListVendorBookings)
	vendorGroup.POST("/bookings/:id/confirm", h.ConfirmBooking)
	vendorGroup.POST("/bookings/:id/complete", h.CompleteBooking)
}

// httpError maps domain error kinds to HTTP statuses.
func httpError(err error) error {
	switch KindOf(err) {
	case KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case KindNotEligible:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) GetAvailability(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	serviceID, err := uuid.Parse(c.QueryParam("service_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "service_id is required")
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	var staffID *uuid.UUID
	if raw := c.QueryParam("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid staff_id")
		}
		staffID = &id
	}
	resp, err := h.svc.Availability(c.Request().Context(), vendorID, serviceID, date, staffID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	b, err := h.svc.CreateBooking(c.Request().Context(), customerID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBooking(c echo.Context) error {
	b, err := h.bookingForRequest(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListMyBookings(c echo.Context) error {
	pg := pagination.FromContext(c)
	customerID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListByCustomer(c.Request().Context(), customerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListVendorBookings(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	if ok, err := h.ownership(c, vendorID); err != nil || !ok {
		return echo.NewHTTPError(http.StatusForbidden, "not your vendor profile")
	}
	var date *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
		date = &d
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByVendor(c.Request().Context(), vendorID, date, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// CancelBooking is open to the booking's customer and the vendor's owner.
func (h *Handler) CancelBooking(c echo.Context) error {
	b, err := h.bookingForRequest(c)
	if err != nil {
		return err
	}
	return h.transition(c, b.ID, StatusCancelled)
}

func (h *Handler) ConfirmBooking(c echo.Context) error {
	b, err := h.vendorBookingForRequest(c)
	if err != nil {
		return err
	}
	return h.transition(c, b.ID, StatusConfirmed)
}

func (h *Handler) CompleteBooking(c echo.Context) error {
	b, err := h.vendorBookingForRequest(c)
	if err != nil {
		return err
	}
	return h.transition(c, b.ID, StatusCompleted)
}

func (h *Handler) transition(c echo.Context, id uuid.UUID, to string) error {
	b, err := h.svc.Transition(c.Request().Context(), id, to)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// bookingForRequest loads the booking and authorizes the caller: the owning
// customer, the vendor's owner, or an admin.
func (h *Handler) bookingForRequest(c echo.Context) (*Booking, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, httpError(err)
	}
	ctx := c.Request().Context()
	if b.CustomerID == auth.UserIDFromContext(ctx) {
		return b, nil
	}
	for _, role := range auth.RolesFromContext(ctx) {
		if role == auth.RoleAdmin {
			return b, nil
		}
	}
	if ok, err := h.ownership(c, b.VendorID); err == nil && ok {
		return b, nil
	}
	return nil, echo.NewHTTPError(http.StatusForbidden, "not your booking")
}

// vendorBookingForRequest authorizes only the vendor's owner (or an admin).
func (h *Handler) vendorBookingForRequest(c echo.Context) (*Booking, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, httpError(err)
	}
	ctx := c.Request().Context()
	for _, role := range auth.RolesFromContext(ctx) {
		if role == auth.RoleAdmin {
			return b, nil
		}
	}
	if ok, err := h.ownership(c, b.VendorID); err == nil && ok {
		return b, nil
	}
	return nil, echo.NewHTTPError(http.StatusForbidden, "not your vendor's booking")
}
