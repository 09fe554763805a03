// Package auth maps numeric PINs to warehouse roles. The mapping is a
// closed static table; there is no credential store.
package auth

import (
	"fmt"
	"net/http"
	"time"

	"warehouse-service/internal/models"

	"github.com/gin-gonic/gin"
)

// Roles
const (
	RoleAdmin  = "admin"
	RolePacker = "packer"
	RoleStower = "stower"
)

// PinHeader carries the acting PIN on every authenticated request.
const PinHeader = "X-Staff-Pin"

// Context keys set by Middleware.
const (
	ContextPin  = "pin"
	ContextRole = "role"
)

var pinRoles = buildPinRoles()

func buildPinRoles() map[string]string {
	roles := map[string]string{
		"601": RoleAdmin,
		"602": RoleAdmin,
		"603": RoleAdmin,
	}
	for pin := 2001; pin <= 2009; pin++ {
		roles[fmt.Sprintf("%d", pin)] = RolePacker
	}
	for pin := 3001; pin <= 3004; pin++ {
		roles[fmt.Sprintf("%d", pin)] = RoleStower
	}
	return roles
}

// RoleForPIN resolves a PIN to its role. Unknown PINs are rejected.
func RoleForPIN(pin string) (string, bool) {
	role, ok := pinRoles[pin]
	return role, ok
}

// Login validates a PIN and returns the session record the client keeps.
// Sessions are never stored server-side.
func Login(pin string) (*models.Session, bool) {
	role, ok := RoleForPIN(pin)
	if !ok {
		return nil, false
	}
	return &models.Session{
		Role:      role,
		PIN:       pin,
		LoginTime: time.Now().Format(time.RFC3339),
	}, true
}

// Middleware resolves the acting PIN from the request header and stores
// pin and role in the gin context. Requests without a valid PIN are
// rejected.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pin := c.GetHeader(PinHeader)
		role, ok := RoleForPIN(pin)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unknown PIN",
			})
			return
		}

		c.Set(ContextPin, pin)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// RequireRole gates a route group to a single role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient role",
			})
			return
		}
		c.Next()
	}
}
