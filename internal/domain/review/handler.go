package review

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salonhub/internal/domain/booking"
	"github.com/salonhub/salonhub/internal/platform/auth"
	"github.com/salonhub/salonhub/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/vendors/:vendorId/reviews", h.ListReviews)
	api.POST("/reviews", h.CreateReview, auth.RequireRole(auth.RoleCustomer))
}

func (h *Handler) CreateReview(c echo.Context) error {
	var rv Review
	if err := c.Bind(&rv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), customerID, &rv); err != nil {
		switch booking.KindOf(err) {
		case booking.KindValidation:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case booking.KindConflict:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case booking.KindNotFound:
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *Handler) ListReviews(c echo.Context) error {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByVendor(c.Request().Context(), vendorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
