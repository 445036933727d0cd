package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, recorder
}

func TestCurrentUserReadsPrincipal(t *testing.T) {
	c, _ := testContext()
	id := uuid.New()
	c.Set(ContextUserIDKey, id)
	c.Set(ContextRolesKey, []string{"ADMIN", "CLIENT"})

	user, ok := CurrentUser(c)
	if !ok {
		t.Fatal("expected a principal")
	}
	if user.ID != id {
		t.Errorf("id = %s, want %s", user.ID, id)
	}
	if !user.HasRole("ADMIN") || user.HasRole("AUDITOR") {
		t.Errorf("roles = %v", user.Roles)
	}
}

func TestCurrentUserMissing(t *testing.T) {
	c, _ := testContext()
	if _, ok := CurrentUser(c); ok {
		t.Error("no principal was set")
	}
}

func TestMustCurrentUserAbortsWith401(t *testing.T) {
	c, recorder := testContext()
	if _, ok := MustCurrentUser(c); ok {
		t.Fatal("expected failure without a principal")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", recorder.Code)
	}
}
