package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       interface{}
		allowed    []string
		wantStatus int
	}{
		{"operator allowed", "OPERATOR", []string{"OPERATOR"}, http.StatusOK},
		{"traveller allowed among several", "TRAVELLER", []string{"OPERATOR", "TRAVELLER"}, http.StatusOK},
		{"traveller rejected from operator route", "TRAVELLER", []string{"OPERATOR"}, http.StatusForbidden},
		{"missing role", nil, []string{"OPERATOR"}, http.StatusForbidden},
		{"non-string role", 42, []string{"OPERATOR"}, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}

			next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
			err := RequireRole(tc.allowed...)(next)(c)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
