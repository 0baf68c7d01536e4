package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(e *echo.Echo, roles ...string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	ctx = context.WithValue(ctx, UserRolesKey, roles)
	return e.NewContext(req.WithContext(ctx), httptest.NewRecorder())
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name     string
		required []string
		has      []string
		allowed  bool
	}{
		{"matching role", []string{RoleVendor}, []string{RoleVendor}, true},
		{"one of several", []string{RoleCustomer, RoleVendor}, []string{RoleVendor}, true},
		{"missing role", []string{RoleVendor}, []string{RoleCustomer}, false},
		{"no roles", []string{RoleCustomer}, nil, false},
		{"admin passes everything", []string{RoleVendor}, []string{RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := requestWithRoles(e, tt.has...)
			err := RequireRole(tt.required...)(ok)(c)
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed {
				httpErr, isHTTP := err.(*echo.HTTPError)
				if !isHTTP || httpErr.Code != http.StatusForbidden {
					t.Errorf("err = %v, want 403", err)
				}
			}
		})
	}
}
