package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/marketplace"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newTestServer builds a server over store with rate limiting disabled.
func newTestServer(t *testing.T, store Store) *Server {
	t.Helper()
	return newTestServerWithLimiter(t, store, ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}))
}

func newTestServerWithLimiter(t *testing.T, store Store, limiter ratelimit.Allower) *Server {
	t.Helper()
	if store == nil {
		store = marketplace.NewMemoryStore()
	}
	s, err := New(Config{
		Store:       store,
		JWT:         testJWTConfig(),
		Password:    testPasswordConfig(),
		RateLimiter: limiter,
	})
	require.NoError(t, err)
	t.Cleanup(limiter.Stop)
	return s
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:          testJWTSecret,
		ExpirationHours: 24,
		Issuer:          config.DefaultJWTIssuer,
	}
}

// testPasswordConfig keeps bcrypt at its minimum cost so tests stay fast.
func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: bcrypt.MinCost, MinLength: 8}
}

// do sends a request through the full middleware chain.
func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// requireError asserts an error response with the given status and code.
func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	body := decodeBody[errorBody](t, w)
	require.Equal(t, code, body.Code)
	return body
}

// register creates an account and returns its token and user.
func register(t *testing.T, s *Server, name, email, role, company string) (string, *marketplace.User) {
	t.Helper()
	w := do(t, s, http.MethodPost, "/auth/register", "", types.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "password123",
		Role:     role,
		Company:  company,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	resp := decodeBody[types.LoginResponse](t, w)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func jobBody(title string) map[string]any {
	return map[string]any{
		"title":        title,
		"location":     "Berlin",
		"description":  "Build and run our APIs",
		"requirements": "3+ years of Go",
		"type":         "Full-time",
		"skills":       "Go, PostgreSQL, go",
	}
}

func applyBody() map[string]any {
	return map[string]any{
		"cover_letter": "I would love to join.",
		"resume_url":   "https://example.com/cv.pdf",
	}
}
