package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRoleForPIN(t *testing.T) {
	cases := []struct {
		pin  string
		role string
		ok   bool
	}{
		{"601", RoleAdmin, true},
		{"602", RoleAdmin, true},
		{"603", RoleAdmin, true},
		{"2001", RolePacker, true},
		{"2009", RolePacker, true},
		{"3001", RoleStower, true},
		{"3004", RoleStower, true},
		{"600", "", false},
		{"604", "", false},
		{"2000", "", false},
		{"2010", "", false},
		{"3005", "", false},
		{"", "", false},
		{"abc", "", false},
	}

	for _, tc := range cases {
		role, ok := RoleForPIN(tc.pin)
		assert.Equal(t, tc.ok, ok, "pin %q", tc.pin)
		assert.Equal(t, tc.role, role, "pin %q", tc.pin)
	}
}

func TestLogin(t *testing.T) {
	session, ok := Login("601")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, session.Role)
	assert.Equal(t, "601", session.PIN)
	assert.NotEmpty(t, session.LoginTime)

	_, ok = Login("9999")
	assert.False(t, ok)
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pin":  c.GetString(ContextPin),
			"role": c.GetString(ContextRole),
		})
	})
	admin := router.Group("/admin")
	admin.Use(RequireRole(RoleAdmin))
	admin.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestMiddlewareRejectsUnknownPIN(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(PinHeader, "1234")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareResolvesRole(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(PinHeader, "2003")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"packer"`)
}

func TestRequireRole(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(PinHeader, "3001")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(PinHeader, "601")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
