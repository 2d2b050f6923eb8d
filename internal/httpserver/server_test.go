package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tinytelemetry/orbit/internal/auth"
	"github.com/tinytelemetry/orbit/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret-0123456789"

func newTestServer(t *testing.T, creds *auth.Credentials) (*Server, http.Handler) {
	t.Helper()
	tokens, err := auth.NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if creds == nil {
		creds, _ = auth.NewCredentials("", "")
	}
	srv := NewServer(Config{
		CORSOrigins: []string{"http://localhost:5173"},
		Logger:      zerolog.Nop(),
	}, tokens, creds)
	return srv, srv.Handler()
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal error body %q: %v", w.Body.String(), err)
	}
	return e
}

func login(t *testing.T, h http.Handler, username, password string) (*httptest.ResponseRecorder, LoginResponse) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	w := do(h, http.MethodPost, "/api/login", string(body), nil)
	var resp LoginResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal login: %v", err)
		}
	}
	return w, resp
}

func TestLoginIssuesTokenAndCookie(t *testing.T) {
	_, h := newTestServer(t, nil)

	w, resp := login(t, h, "ripley", "nostromo")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	if d := time.Until(resp.ExpiresAt); d < 59*time.Minute || d > time.Hour+time.Second {
		t.Errorf("expires_at %v not about an hour away", resp.ExpiresAt)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == model.AuthCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("auth cookie not set")
	}
	if cookie.Value != resp.Token || !cookie.HttpOnly || cookie.MaxAge != 3600 || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie: %+v", cookie)
	}
	if cookie.Secure {
		t.Error("cookie must not be Secure outside production")
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	_, h := newTestServer(t, nil)

	for _, body := range []string{`{"username":"ripley"}`, `{"password":"x"}`, `{"username":"","password":""}`} {
		w := do(h, http.MethodPost, "/api/login", body, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("body %s: status = %d, want 401", body, w.Code)
		}
		if e := decodeError(t, w); e.Message != "Invalid credentials" || e.RequestID == "" {
			t.Errorf("body %s: unexpected error %+v", body, e)
		}
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, http.MethodPost, "/api/login", `{"username":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLoginWithPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("nostromo"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	creds, err := auth.NewCredentials("ripley", string(hash))
	if err != nil {
		t.Fatal(err)
	}
	_, h := newTestServer(t, creds)

	if w, _ := login(t, h, "ripley", "nostromo"); w.Code != http.StatusOK {
		t.Errorf("valid login status = %d", w.Code)
	}
	if w, _ := login(t, h, "ripley", "sulaco"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", w.Code)
	}
	if w, _ := login(t, h, "ash", "nostromo"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong user status = %d", w.Code)
	}
}

func TestProfile(t *testing.T) {
	_, h := newTestServer(t, nil)
	_, resp := login(t, h, "ripley", "nostromo")

	w := do(h, http.MethodGet, "/api/profile", "", map[string]string{"Authorization": "Bearer " + resp.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d, body %s", w.Code, w.Body.String())
	}
	var body struct {
		User map[string]interface{} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}
	if body.User["username"] != "ripley" {
		t.Errorf("username = %v", body.User["username"])
	}
	for _, k := range []string{"iat", "exp", "jti", "iss"} {
		if _, ok := body.User[k]; !ok {
			t.Errorf("profile missing %s claim", k)
		}
	}
}

func TestProfileFromCookie(t *testing.T) {
	_, h := newTestServer(t, nil)
	_, resp := login(t, h, "ripley", "nostromo")

	w := do(h, http.MethodGet, "/api/profile", "", map[string]string{"Cookie": model.AuthCookieName + "=" + resp.Token})
	if w.Code != http.StatusOK {
		t.Errorf("profile via cookie status = %d", w.Code)
	}
}

func TestProfileErrors(t *testing.T) {
	_, h := newTestServer(t, nil)

	cases := []struct {
		name    string
		headers map[string]string
		message string
	}{
		{"no token", nil, "No token provided"},
		{"garbage", map[string]string{"Authorization": "Bearer abc.def.ghi"}, "Invalid token"},
		{"wrong scheme", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, "Invalid token"},
		{"bare bearer", map[string]string{"Authorization": "Bearer"}, "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(h, http.MethodGet, "/api/profile", "", tc.headers)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if e := decodeError(t, w); e.Message != tc.message {
				t.Errorf("message = %q, want %q", e.Message, tc.message)
			}
		})
	}
}

func TestProfileRejectsForeignSecret(t *testing.T) {
	_, h := newTestServer(t, nil)
	other, err := auth.NewTokens("a-completely-different-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := other.Issue("ripley")
	if err != nil {
		t.Fatal(err)
	}
	w := do(h, http.MethodGet, "/api/profile", "", map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, http.MethodPost, "/api/logout", "", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("logout status = %d, want 204", w.Code)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), model.AuthCookieName+"=;") {
		t.Errorf("cookie not cleared: %q", w.Header().Get("Set-Cookie"))
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, http.MethodGet, "/api/health", "", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("X-Frame-Options = %q", w.Header().Get("X-Frame-Options"))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", w.Header().Get("X-Content-Type-Options"))
	}

	w = do(h, http.MethodGet, "/api/health", "", map[string]string{"X-Request-ID": "abc-123"})
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("incoming request id not kept: %q", got)
	}
}

func TestCORS(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, http.MethodOptions, "/api/login", "", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "POST",
	})
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials not allowed")
	}

	w = do(h, http.MethodGet, "/api/health", "", map[string]string{"Origin": "http://evil.example"})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d, want 403", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, http.MethodGet, "/api/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if e := decodeError(t, w); e.Message != "Not found" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestStartStop(t *testing.T) {
	tokens, _ := auth.NewTokens(testSecret, time.Hour)
	creds, _ := auth.NewCredentials("", "")
	srv := NewServer(Config{Addr: "127.0.0.1:0", Logger: zerolog.Nop()}, tokens, creds)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
