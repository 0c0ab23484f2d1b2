package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/marketplace"
	"github.com/jonathan/jobboard/internal/server/middleware"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Store is the persistence the server runs on: the marketplace store plus accounts.
type Store interface {
	marketplace.Store
	UserStore
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	rateLimiter ratelimit.Allower
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	catalog     *marketplace.Catalog
	workflow    *marketplace.Workflow
	profiles    *marketplace.ProfileService
	corsOrigins map[string]bool
}

// Config holds server configuration
type Config struct {
	Port        int
	Store       Store
	JWT         *config.JWTConfig
	Password    *config.PasswordConfig
	RateLimiter ratelimit.Allower // in-process limiter from the environment when nil
	CORSOrigins []string          // any origin when empty
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("server requires a JWT config")
	}
	if cfg.Password == nil {
		return nil, fmt.Errorf("server requires a password config")
	}

	s := &Server{
		store:       cfg.Store,
		rateLimiter: cfg.RateLimiter,
		catalog:     marketplace.NewCatalog(cfg.Store),
		workflow:    marketplace.NewWorkflow(cfg.Store),
		profiles:    marketplace.NewProfileService(cfg.Store),
		corsOrigins: make(map[string]bool),
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}
	for _, origin := range cfg.CORSOrigins {
		s.corsOrigins[strings.TrimSpace(origin)] = true
	}

	s.jwtService = NewJWTService(cfg.JWT)
	s.userService = NewUserService(cfg.Store, cfg.Password)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	requireAuth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Identity
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /auth/me", requireAuth(http.HandlerFunc(s.handleMe)))

	// Job catalog
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("PATCH /jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("GET /employer/jobs", s.handleListEmployerJobs)

	// Applications
	mux.HandleFunc("POST /jobs/{id}/applications", s.handleApply)
	mux.HandleFunc("GET /jobs/{id}/applications", s.handleListJobApplications)
	mux.HandleFunc("GET /applications/me", s.handleListMyApplications)
	mux.HandleFunc("GET /applications/{id}", s.handleGetApplication)
	mux.HandleFunc("PUT /applications/{id}/status", s.handleUpdateApplicationStatus)

	// Profiles
	mux.HandleFunc("GET /users/{id}/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /profile", s.handleUpsertProfile)

	optionalAuth := middleware.OptionalAuthMiddleware(s.jwtService.AsTokenValidator())
	return s.withRateLimit(s.withLogging(s.withCORS(optionalAuth(mux))))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.release()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.release()
	log.Println("Server stopped")
	return nil
}

// release stops the rate limiter and closes the store when it holds connections.
func (s *Server) release() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if closer, ok := s.store.(interface{ Close() }); ok {
		closer.Close()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.corsOrigins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.corsOrigins[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(r.Context(), clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d %v %s", r.Method, r.URL.Path, rec.status, time.Since(start), s.extractClientID(r))
	})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"code":      CodeRateLimited,
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth reports liveness and, when the store supports it, database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pinger, ok := s.store.(interface{ Ping(context.Context) error })
	if !ok {
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "store": "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		log.Printf("[health] database ping failed: %v", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "store": "postgres"})
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, caller)
}

// caller resolves the request's user, or nil for anonymous requests and
// tokens whose account no longer exists.
func (s *Server) caller(r *http.Request) (*marketplace.User, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, nil
	}
	return s.userService.Resolve(r.Context(), userID)
}

// requireCaller resolves the caller and writes an error response when there is none.
func (s *Server) requireCaller(w http.ResponseWriter, r *http.Request) (*marketplace.User, bool) {
	user, err := s.caller(r)
	if err != nil {
		s.errorResponse(w, err)
		return nil, false
	}
	if user == nil {
		s.errorResponse(w, &marketplace.ErrUnauthenticated{})
		return nil, false
	}
	return user, true
}

// pathID parses the {id} path value.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, &marketplace.ErrValidation{Field: "id", Message: "invalid " + resource + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	writeError(w, err)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Code: errorCode(err)}

	var verr *marketplace.ErrValidation
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	switch {
	case marketplace.IsRetryable(err):
		log.Printf("[storage] %v", err)
		body.Error = "storage temporarily unavailable"
		body.Retryable = true
	case body.Code == CodeInternal:
		log.Printf("[server] internal error: %v", err)
		body.Error = "internal server error"
	}
	writeJSON(w, HTTPStatus(err), body)
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &marketplace.ErrValidation{Field: "body", Message: "request body is required"}
		}
		return &marketplace.ErrValidation{Field: "body", Message: "Invalid request body: " + err.Error()}
	}
	return nil
}
