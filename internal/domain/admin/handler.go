package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salonhub/internal/domain/vendor"
	"github.com/salonhub/salonhub/internal/platform/auth"
	"github.com/salonhub/salonhub/internal/platform/notification"
	"github.com/salonhub/salonhub/pkg/pagination"
)

// Handler exposes the admin surface: vendor verification and platform
// reporting. Every route requires the admin role.
type Handler struct {
	vendors   *vendor.Service
	analytics *Analytics
	notify    *notification.Dispatcher
}

func NewHandler(vendors *vendor.Service, analytics *Analytics, notify *notification.Dispatcher) *Handler {
	return &Handler{vendors: vendors, analytics: analytics, notify: notify}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	g.GET("/vendors", h.ListVendors)
	g.POST("/vendors/:id/approve", h.ApproveVendor)
	g.POST("/vendors/:id/reject", h.RejectVendor)
	g.GET("/stats", h.GetStats)
	g.GET("/stats/bookings-per-day", h.GetBookingsPerDay)
	g.GET("/stats/top-services", h.GetTopServices)
}

// ListVendors defaults to the approval queue but accepts any status filter.
func (h *Handler) ListVendors(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = vendor.StatusPending
	}
	pg := pagination.FromContext(c)
	items, total, err := h.vendors.ListByStatus(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ApproveVendor(c echo.Context) error {
	v, err := h.setStatus(c, vendor.StatusApproved)
	if err != nil {
		return err
	}
	if h.notify != nil {
		h.notify.SendAsync(notification.TypeEmail, v.Email, "vendor-approved", map[string]string{
			"vendor_name": v.Name,
		})
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) RejectVendor(c echo.Context) error {
	v, err := h.setStatus(c, vendor.StatusRejected)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) setStatus(c echo.Context, status string) (*vendor.Vendor, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.vendors.SetStatus(c.Request().Context(), id, status)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "vendor not found")
	}
	return v, nil
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.analytics.PlatformStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetBookingsPerDay(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	out, err := h.analytics.BookingsPerDay(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": out})
}

func (h *Handler) GetTopServices(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	if days <= 0 {
		days = 30
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	out, err := h.analytics.TopServices(c.Request().Context(), time.Now().AddDate(0, 0, -days), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": out})
}
