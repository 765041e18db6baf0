package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb, mr
}

func TestRateLimit(t *testing.T) {
	rdb, mr := setupTestRedis(t)

	r := gin.New()
	r.Use(RealIP())
	r.GET("/ping", RateLimit(rdb, 2, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do("203.0.113.7"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	w := do("203.0.113.7")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" || w.Header().Get("Retry-After") == "" {
		t.Fatalf("unexpected headers %v", w.Header())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["success"] != false {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}

	if w := do("198.51.100.1"); w.Code != http.StatusOK {
		t.Fatalf("other clients must have their own window, got %d", w.Code)
	}

	mr.FastForward(time.Minute + time.Second)
	if w := do("203.0.113.7"); w.Code != http.StatusOK {
		t.Fatalf("window should reset, got %d", w.Code)
	}
}

func TestRateLimitAllowAndDisabled(t *testing.T) {
	rdb, _ := setupTestRedis(t)

	r := gin.New()
	r.Use(RealIP())
	r.GET("/private", RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/off", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("X-Real-IP", "10.1.2.3")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("private callers bypass the limit, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/off", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("nil redis disables limiting, got %d", w.Code)
		}
	}
}

type stubUsers map[string]*entity.User

func (s stubUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, application.ErrUserNotFound
}

func TestAuthenticateAndProtect(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour, "test")
	users := stubUsers{"u1": {ID: "u1", Email: "a@example.com"}}

	r := gin.New()
	r.GET("/claims", Authenticate(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey)+"|"+c.GetString(CtxUserEmailKey))
	})
	r.GET("/me", Authenticate(jwt), Protect(users), func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, u.ID)
	})

	good, _, _ := jwt.GenerateToken("u1", "a@example.com")
	ghost, _, _ := jwt.GenerateToken("gone", "")
	expired, _, _ := helpers.NewJWTManager("secret", -time.Minute, "test").GenerateToken("u1", "")
	foreign, _, _ := helpers.NewJWTManager("other", time.Hour, "test").GenerateToken("u1", "")

	cases := []struct {
		name   string
		path   string
		header string
		code   int
		body   string
	}{
		{"claims", "/claims", "Bearer " + good, http.StatusOK, "u1|a@example.com"},
		{"lowercase scheme", "/claims", "bearer " + good, http.StatusOK, "u1|a@example.com"},
		{"missing", "/claims", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/claims", "Basic " + good, http.StatusUnauthorized, ""},
		{"garbage", "/claims", "Bearer not.a.jwt", http.StatusUnauthorized, ""},
		{"expired", "/claims", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"foreign secret", "/claims", "Bearer " + foreign, http.StatusUnauthorized, ""},
		{"protect ok", "/me", "Bearer " + good, http.StatusOK, "u1"},
		{"deleted user trusted by claims", "/claims", "Bearer " + ghost, http.StatusOK, "gone|"},
		{"deleted user rejected by protect", "/me", "Bearer " + ghost, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Fatalf("unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() == "" || w.Header().Get(RequestIDHeader) != w.Body.String() {
		t.Fatalf("expected generated id echoed in header, got %q / %q", w.Body.String(), w.Header().Get(RequestIDHeader))
	}

	const id = "4b0c1f4e-5d59-4a8e-9b9e-6f2a1c3d7e10"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != id {
		t.Fatalf("expected incoming id reused, got %q", w.Body.String())
	}
}
