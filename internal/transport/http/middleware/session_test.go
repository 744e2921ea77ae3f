package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/ErlanBelekov/superrichie/internal/session"
	"github.com/ErlanBelekov/superrichie/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testKey = []byte("test-session-key-at-least-32-bytes!!")

func newSessionEngine(m *session.Manager) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Session(m), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":    c.GetString("userID"),
			"userEmail": c.GetString("userEmail"),
		})
	})
	return r
}

func TestSession_NoCookie(t *testing.T) {
	r := newSessionEngine(session.NewManager(testKey))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_ValidCookie(t *testing.T) {
	m := session.NewManager(testKey)
	raw, err := m.Issue(&domain.User{ID: "user-123", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: raw})
	w := httptest.NewRecorder()
	newSessionEngine(m).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != `{"userEmail":"a@b.com","userID":"user-123"}` {
		t.Errorf("body = %s", body)
	}
}

func TestSession_RawEmailCookieRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "a@b.com"})
	w := httptest.NewRecorder()
	newSessionEngine(session.NewManager(testKey)).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_ForeignKeyRejected(t *testing.T) {
	other := session.NewManager([]byte("another-key-another-key-another-key!"))
	raw, _ := other.Issue(&domain.User{ID: "user-123", Email: "a@b.com"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: raw})
	w := httptest.NewRecorder()
	newSessionEngine(session.NewManager(testKey)).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
