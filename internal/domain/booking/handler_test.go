package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salonhub/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *fixture, *echo.Echo) {
	f := newFixture(t)
	h := NewHandler(f.svc, func(echo.Context, uuid.UUID) (bool, error) { return false, nil })
	return h, f, echo.New()
}

func asUser(c echo.Context, userID string, roles ...string) {
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestHandler_GetAvailability(t *testing.T) {
	h, f, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/?service_id="+f.serviceID.String()+"&date="+f.date, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("vendorId")
	c.SetParamValues(f.vendorID.String())

	if err := h.GetAvailability(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) == 0 {
		t.Error("expected slots in the response")
	}
}

func TestHandler_GetAvailability_MissingParams(t *testing.T) {
	h, f, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("vendorId")
	c.SetParamValues(f.vendorID.String())

	err := h.GetAvailability(c)
	if err == nil {
		t.Error("expected error for missing service_id")
	}
}

func TestHandler_CreateBooking(t *testing.T) {
	h, f, e := newTestHandler(t)
	body := `{"vendor_id":"` + f.vendorID.String() + `","service_id":"` + f.serviceID.String() +
		`","date":"` + f.date + `","time":"10:00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asUser(c, "cust-1", auth.RoleCustomer)

	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var b Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if b.CustomerID != "cust-1" {
		t.Errorf("customer = %q, want the authenticated user", b.CustomerID)
	}
}

func TestHandler_CreateBooking_Conflict(t *testing.T) {
	h, f, e := newTestHandler(t)
	mk := func() (*httptest.ResponseRecorder, error) {
		body := `{"vendor_id":"` + f.vendorID.String() + `","service_id":"` + f.serviceID.String() +
			`","staff_id":"` + f.staffA.String() + `","date":"` + f.date + `","time":"10:00"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		asUser(c, "cust-1", auth.RoleCustomer)
		return rec, h.CreateBooking(c)
	}

	if _, err := mk(); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := mk()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Errorf("second booking err = %v, want 409", err)
	}
}

func TestHandler_GetBooking_Forbidden(t *testing.T) {
	h, f, e := newTestHandler(t)
	b, err := f.svc.CreateBooking(context.Background(), "cust-1", CreateRequest{
		VendorID: f.vendorID, ServiceID: f.serviceID, Date: f.date, Time: "10:00",
	})
	if err != nil {
		t.Fatalf("setup booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(b.ID.String())
	asUser(c, "someone-else", auth.RoleCustomer)

	err = h.GetBooking(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("err = %v, want 403", err)
	}
}

func TestHandler_GetBooking_AdminAllowed(t *testing.T) {
	h, f, e := newTestHandler(t)
	b, err := f.svc.CreateBooking(context.Background(), "cust-1", CreateRequest{
		VendorID: f.vendorID, ServiceID: f.serviceID, Date: f.date, Time: "10:00",
	})
	if err != nil {
		t.Fatalf("setup booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(b.ID.String())
	asUser(c, "admin-1", auth.RoleAdmin)

	if err := h.GetBooking(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_CancelBooking(t *testing.T) {
	h, f, e := newTestHandler(t)
	b, err := f.svc.CreateBooking(context.Background(), "cust-1", CreateRequest{
		VendorID: f.vendorID, ServiceID: f.serviceID, Date: f.date, Time: "10:00",
	})
	if err != nil {
		t.Fatalf("setup booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(b.ID.String())
	asUser(c, "cust-1", auth.RoleCustomer)

	if err := h.CancelBooking(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}
