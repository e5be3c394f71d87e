package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(keys []string) *gin.Engine {
	router := gin.New()
	router.Use(OperatorAuth(keys))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestOperatorAuth_OpenWhenUnconfigured(t *testing.T) {
	router := authRouter(nil)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected open API without keys, got %d", w.Code)
	}
}

func TestOperatorAuth_ValidHeader(t *testing.T) {
	router := authRouter([]string{"op-key-1", "op-key-2"})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-API-Key", "op-key-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestOperatorAuth_ValidQueryParam(t *testing.T) {
	router := authRouter([]string{"op-key"})

	req := httptest.NewRequest("GET", "/test?api_key=op-key", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestOperatorAuth_Missing(t *testing.T) {
	router := authRouter([]string{"op-key"})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestOperatorAuth_Invalid(t *testing.T) {
	router := authRouter([]string{"op-key"})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
