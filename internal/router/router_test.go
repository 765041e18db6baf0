package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/config"
	"github.com/oksasatya/go-article-feed/internal/container"
	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/infrastructure/memory"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type envelope struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Meta      json.RawMessage `json:"meta"`
	Error     json.RawMessage `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	c      *container.Container
}

func newTestAPI(t *testing.T, mutate ...func(*config.Config)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppName:             "article-feed-test",
		StoreDriver:         "memory",
		ObjectStorageDriver: "memory",
		MaxImageBytes:       1 << 10,
		JWTSecret:           "test-secret",
		JWTTTL:              time.Hour,
		CORSAllowedOrigins:  "http://localhost:5173",
		DebugMetricsEnabled: true,
	}
	for _, m := range mutate {
		m(cfg)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := container.Build(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	t.Cleanup(c.Close)
	return &testAPI{t: t, engine: NewEngine(c), c: c}
}

func (a *testAPI) do(method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			a.t.Fatalf("%s %s: bad json %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func (a *testAPI) json(method, path, token string, payload any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}
	return a.do(method, path, token, body, "application/json")
}

func (a *testAPI) multipart(method, path, token string, fields map[string]string, fileField, fileName string, file []byte) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			a.t.Fatalf("form file: %v", err)
		}
		_, _ = fw.Write(file)
	}
	_ = mw.Close()
	return a.do(method, path, token, &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

type authData struct {
	User  entity.User `json:"user"`
	Token string      `json:"token"`
}

func (a *testAPI) register(email, phone string, prefs ...string) authData {
	a.t.Helper()
	if prefs == nil {
		prefs = []string{}
	}
	w, env := a.json(http.MethodPost, "/api/auth/register", "", map[string]any{
		"firstName":   "Test",
		"lastName":    "User",
		"email":       email,
		"phone":       phone,
		"password":    "secret123",
		"dateOfBirth": "1990-05-17",
		"preferences": prefs,
	})
	if w.Code != http.StatusCreated {
		a.t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	return decode[authData](a.t, env.Data)
}

func (a *testAPI) createArticle(token, title string, cat entity.Category) entity.Article {
	a.t.Helper()
	w, env := a.json(http.MethodPost, "/api/articles", token, map[string]any{
		"title":    title,
		"content":  "content of " + title,
		"category": cat,
		"tags":     "go, backend ,",
	})
	if w.Code != http.StatusCreated {
		a.t.Fatalf("create article: %d %s", w.Code, w.Body.String())
	}
	return decode[entity.Article](a.t, env.Data)
}

func TestEndToEndFeedAndReactions(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("u@example.com", "5551000001", "Technology")
	if u.Token == "" || u.User.Password != "" {
		t.Fatalf("unexpected register payload %+v", u)
	}

	w, env := api.multipart(http.MethodPost, "/api/articles", u.Token, map[string]string{
		"title":    "A1",
		"content":  "gophers everywhere",
		"category": "Technology",
		"tags":     "go,web",
	}, "image", "cover.png", pngBytes)
	if w.Code != http.StatusCreated {
		t.Fatalf("create A1: %d %s", w.Code, w.Body.String())
	}
	a1 := decode[entity.Article](t, env.Data)
	if a1.Author != u.User.ID || a1.ImageURL == "" || len(a1.Tags) != 2 {
		t.Fatalf("unexpected article %+v", a1)
	}
	api.createArticle(u.Token, "S1", entity.CategorySports)

	w, env = api.json(http.MethodGet, "/api/articles/feed", u.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("feed: %d %s", w.Code, w.Body.String())
	}
	feed := decode[[]entity.Article](t, env.Data)
	if len(feed) != 1 || feed[0].ID != a1.ID {
		t.Fatalf("feed should be [A1], got %+v", feed)
	}

	u2 := api.register("u2@example.com", "5551000002")
	for i := 0; i < 2; i++ {
		w, env = api.json(http.MethodPost, "/api/articles/"+a1.ID+"/reactions", u2.Token, map[string]string{"type": "likes"})
		if w.Code != http.StatusOK {
			t.Fatalf("like: %d %s", w.Code, w.Body.String())
		}
	}
	liked := decode[entity.Article](t, env.Data)
	if len(liked.Likes) != 1 || liked.Likes[0] != u2.User.ID {
		t.Fatalf("likes should contain U2 exactly once, got %v", liked.Likes)
	}

	w, env = api.json(http.MethodDelete, "/api/articles/"+a1.ID+"/reactions", u2.Token, map[string]string{"type": "dislikes"})
	if w.Code != http.StatusOK || len(decode[entity.Article](t, env.Data).Likes) != 1 {
		t.Fatalf("removing an absent reaction must be a no-op: %d %s", w.Code, w.Body.String())
	}
	w, _ = api.json(http.MethodDelete, "/api/articles/"+a1.ID+"/reactions", u2.Token, map[string]string{"type": "likes"})
	if w.Code != http.StatusOK {
		t.Fatalf("unlike: %d", w.Code)
	}

	w, env = api.json(http.MethodGet, "/api/articles/author/"+u.User.ID, u2.Token, nil)
	if w.Code != http.StatusOK || len(decode[[]entity.Article](t, env.Data)) != 2 {
		t.Fatalf("author listing: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterDuplicatesAndLogin(t *testing.T) {
	api := newTestAPI(t)
	api.register("dup@example.com", "5552000001")

	for _, tc := range []struct{ email, phone, field string }{
		{"dup@example.com", "5552000009", "email"},
		{"fresh@example.com", "5552000001", "phone"},
	} {
		w, env := api.json(http.MethodPost, "/api/auth/register", "", map[string]any{
			"firstName": "Dup", "lastName": "User", "email": tc.email, "phone": tc.phone,
			"password": "secret123", "dateOfBirth": "1990-01-01",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("duplicate %s: expected 400, got %d", tc.field, w.Code)
		}
		if details := decode[map[string]string](t, env.Error); details[tc.field] == "" {
			t.Fatalf("expected %s detail, got %s", tc.field, env.Error)
		}
	}
	if n := api.c.UserRepo.(*memory.UserRepository).Count(); n != 1 {
		t.Fatalf("duplicates must not be stored, have %d users", n)
	}

	w1, e1 := api.json(http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": "dup@example.com", "password": "wrong-pass"})
	w2, e2 := api.json(http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": "nobody@example.com", "password": "secret123"})
	if w1.Code != http.StatusUnauthorized || w2.Code != http.StatusUnauthorized || e1.Message != e2.Message {
		t.Fatalf("login failures must match: %d %q / %d %q", w1.Code, e1.Message, w2.Code, e2.Message)
	}

	w, env := api.json(http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": "5552000001", "password": "secret123"})
	if w.Code != http.StatusOK || decode[authData](t, env.Data).Token == "" {
		t.Fatalf("login by phone: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)
	w, env := api.json(http.MethodPost, "/api/auth/register", "", map[string]any{
		"firstName": "V", "email": "not-an-email", "phone": "123",
		"password": "123", "dateOfBirth": "17/05/1990", "preferences": []string{"Cooking"},
	})
	if w.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details := decode[map[string]string](t, env.Error)
	for _, field := range []string{"firstName", "lastName", "email", "phone", "password", "dateOfBirth", "preferences[0]"} {
		if details[field] == "" {
			t.Errorf("missing detail for %s in %v", field, details)
		}
	}
}

func TestArticleUpdateKeepsImageAndDelete(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("w@example.com", "5553000001")

	_, env := api.multipart(http.MethodPost, "/api/articles", u.Token, map[string]string{
		"title": "Pic", "content": "with image", "category": "Science",
	}, "image", "pic.png", pngBytes)
	created := decode[entity.Article](t, env.Data)

	w, env := api.json(http.MethodPatch, "/api/articles/"+created.ID, u.Token, map[string]any{
		"category": "Health",
		"content":  "edited",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	updated := decode[entity.Article](t, env.Data)
	if updated.ImageURL != created.ImageURL || updated.Category != entity.CategoryHealth || updated.Title != "Pic" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	w, _ = api.multipart(http.MethodPatch, "/api/articles/"+created.ID, u.Token, map[string]string{"tags": "a,b"}, "image", "next.png", pngBytes)
	if w.Code != http.StatusOK {
		t.Fatalf("multipart update: %d %s", w.Code, w.Body.String())
	}
	images := api.c.Images.(*memory.ImageStore)
	if images.Has(created.ImageURL) || images.Len() != 1 {
		t.Fatal("replaced image should be removed from storage")
	}

	w, _ = api.json(http.MethodDelete, "/api/articles/"+created.ID, u.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPatch} {
		w, _ = api.json(method, "/api/articles/"+created.ID, u.Token, map[string]any{"title": "x"})
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s after delete: expected 404, got %d", method, w.Code)
		}
	}
	if images.Len() != 0 {
		t.Fatal("article image should be removed on delete")
	}
}

func TestArticleValidation(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("v@example.com", "5554000001")

	w, env := api.json(http.MethodPost, "/api/articles", u.Token, map[string]any{"title": "T", "content": "C", "category": "Cooking"})
	if w.Code != http.StatusBadRequest || decode[map[string]string](t, env.Error)["category"] == "" {
		t.Fatalf("bad category: %d %s", w.Code, w.Body.String())
	}

	w, env = api.multipart(http.MethodPost, "/api/articles", u.Token, map[string]string{
		"title": "T", "content": "C", "category": "Sports",
	}, "image", "notes.png", []byte("plain text pretending to be a png"))
	if w.Code != http.StatusBadRequest || decode[map[string]string](t, env.Error)["image"] == "" {
		t.Fatalf("non-image upload: %d %s", w.Code, w.Body.String())
	}

	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<10)...)
	w, _ = api.multipart(http.MethodPost, "/api/articles", u.Token, map[string]string{
		"title": "T", "content": "C", "category": "Sports",
	}, "image", "big.png", big)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized upload: expected 400, got %d", w.Code)
	}

	w, _ = api.json(http.MethodPost, "/api/articles/whatever/reactions", u.Token, map[string]string{"type": "loves"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad reaction type: expected 400, got %d", w.Code)
	}
	w, _ = api.json(http.MethodPost, "/api/articles/whatever/reactions", u.Token, map[string]string{"type": "likes"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("reaction on missing article: expected 404, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/api/articles/feed", "/api/articles/x", "/api/users/me"} {
		w, env := api.json(http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized || env.Success {
			t.Fatalf("%s without token: expected 401, got %d", path, w.Code)
		}
	}
	w, _ := api.json(http.MethodGet, "/api/users/me", "garbage", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("me@example.com", "5555000001", "Sports")
	api.register("taken@example.com", "5555000002")

	w, env := api.json(http.MethodGet, "/api/users/me", u.Token, nil)
	if w.Code != http.StatusOK || decode[entity.User](t, env.Data).Email != "me@example.com" {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	if env.RequestID == "" || w.Header().Get("X-Request-ID") != env.RequestID {
		t.Fatalf("envelope should carry the request id, got %q", env.RequestID)
	}

	w, env = api.do(http.MethodPost, "/api/users/preferences", u.Token, strings.NewReader(`["Science","Health"]`), "application/json")
	if w.Code != http.StatusOK || len(decode[entity.User](t, env.Data).Preferences) != 2 {
		t.Fatalf("array preferences: %d %s", w.Code, w.Body.String())
	}
	w, env = api.do(http.MethodPost, "/api/users/preferences", u.Token, strings.NewReader(`{"preferences":["Business"]}`), "application/json")
	prefs := decode[entity.User](t, env.Data).Preferences
	if w.Code != http.StatusOK || len(prefs) != 1 || prefs[0] != "Business" {
		t.Fatalf("object preferences must overwrite: %d %v", w.Code, prefs)
	}
	w, _ = api.do(http.MethodPost, "/api/users/preferences", u.Token, strings.NewReader(`["Cooking"]`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid preference: expected 400, got %d", w.Code)
	}

	w, env = api.multipart(http.MethodPatch, "/api/users/profile", u.Token, map[string]string{"firstName": "Renamed"}, "profileImage", "me.png", pngBytes)
	profile := decode[entity.User](t, env.Data)
	if w.Code != http.StatusOK || profile.FirstName != "Renamed" || profile.LastName != "User" || profile.ProfileImage == "" {
		t.Fatalf("profile update: %d %s", w.Code, w.Body.String())
	}
	w, _ = api.json(http.MethodPatch, "/api/users/profile", u.Token, map[string]string{"email": "taken@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("taken email: expected 400, got %d", w.Code)
	}

	w, _ = api.json(http.MethodPatch, "/api/users/password", u.Token, map[string]string{"currentPassword": "wrong", "newPassword": "another1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong current password: expected 400, got %d", w.Code)
	}
	w, _ = api.json(http.MethodPatch, "/api/users/password", u.Token, map[string]string{"currentPassword": "secret123", "newPassword": "another1"})
	if w.Code != http.StatusOK {
		t.Fatalf("password change: %d", w.Code)
	}
	w, _ = api.json(http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": "me@example.com", "password": "another1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password: %d", w.Code)
	}
}

func TestOwnershipFlag(t *testing.T) {
	api := newTestAPI(t, func(c *config.Config) { c.OwnershipChecks = true })
	owner := api.register("owner@example.com", "5556000001")
	other := api.register("other@example.com", "5556000002")
	a := api.createArticle(owner.Token, "Mine", entity.CategoryBusiness)

	w, _ := api.json(http.MethodPatch, "/api/articles/"+a.ID, other.Token, map[string]string{"title": "Theirs"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-author update: expected 403, got %d", w.Code)
	}
	w, _ = api.json(http.MethodDelete, "/api/articles/"+a.ID, other.Token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-author delete: expected 403, got %d", w.Code)
	}
	w, _ = api.json(http.MethodPatch, "/api/articles/"+a.ID, owner.Token, map[string]string{"title": "Still mine"})
	if w.Code != http.StatusOK {
		t.Fatalf("author update: expected 200, got %d", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("s@example.com", "5557000001")
	want := api.createArticle(u.Token, "Quantum computing primer", entity.CategoryScience)
	api.createArticle(u.Token, "Transfer window", entity.CategorySports)

	w, env := api.json(http.MethodGet, "/api/articles/search?q=quantum&size=5", u.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: %d %s", w.Code, w.Body.String())
	}
	hits := decode[[]entity.Article](t, env.Data)
	if len(hits) != 1 || hits[0].ID != want.ID {
		t.Fatalf("unexpected hits %+v", hits)
	}
	w, _ = api.json(http.MethodGet, "/api/articles/search", u.Token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing q: expected 400, got %d", w.Code)
	}

	api.c.Articles.Index = nil
	w, _ = api.json(http.MethodGet, "/api/articles/search?q=quantum", u.Token, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("search without index: expected 503, got %d", w.Code)
	}
}

func TestDebugVars(t *testing.T) {
	api := newTestAPI(t)
	w, _ := api.do(http.MethodGet, "/api/debug/vars", "", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "memstats") {
		t.Fatalf("debug vars: %d", w.Code)
	}
}

func TestEmptyListsKeepDataKey(t *testing.T) {
	api := newTestAPI(t)
	u := api.register("empty@example.com", "5558000001", "Technology")

	w, _ := api.do(http.MethodPost, "/api/users/preferences", u.Token, strings.NewReader(`{"preferences":[]}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("clear preferences: %d %s", w.Code, w.Body.String())
	}

	for _, path := range []string{
		"/api/articles/feed",
		"/api/articles/author/" + u.User.ID,
		"/api/articles/search?q=nothing",
	} {
		w, env := api.json(http.MethodGet, path, u.Token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
		if string(env.Data) != "[]" {
			t.Fatalf("%s: data should be [], got %q", path, env.Data)
		}
	}
}
