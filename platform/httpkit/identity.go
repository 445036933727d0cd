package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Principal is the authenticated caller as seen by handlers. The role list
// is small (ADMIN, CLIENT) and comes straight from the verified token.
type Principal struct {
	ID    uuid.UUID
	Roles []string
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// CurrentUser reads the principal the auth middleware stored on the context.
// ok is false on unauthenticated routes or when middleware did not run.
func CurrentUser(c *gin.Context) (Principal, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return Principal{}, false
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return Principal{}, false
	}

	p := Principal{ID: id}
	if raw, exists := c.Get(ContextRolesKey); exists {
		p.Roles, _ = raw.([]string)
	}
	return p, true
}

// MustCurrentUser is CurrentUser for routes behind AuthRequired. A missing
// principal aborts the request with 401.
func MustCurrentUser(c *gin.Context) (Principal, bool) {
	p, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return Principal{}, false
	}
	return p, true
}
