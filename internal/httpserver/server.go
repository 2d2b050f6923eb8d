// Package httpserver exposes the login service: token issuance, profile
// lookup, logout and a health probe.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tinytelemetry/orbit/internal/auth"
	"github.com/tinytelemetry/orbit/internal/model"
)

// Config holds the listener and policy settings.
type Config struct {
	Addr        string
	Production  bool
	CORSOrigins []string
	Logger      zerolog.Logger
}

// Server provides the authentication HTTP API.
type Server struct {
	cfg       Config
	tokens    *auth.Tokens
	creds     *auth.Credentials
	log       zerolog.Logger
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(cfg Config, tokens *auth.Tokens, creds *auth.Credentials) *Server {
	if cfg.Addr == "" {
		cfg.Addr = net.JoinHostPort("0.0.0.0", "4000")
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:5173"}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		tokens:    tokens,
		creds:     creds,
		log:       cfg.Logger.With().Str("component", "http").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the gin engine with middleware and routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(
		gin.CustomRecoveryWithWriter(nil, s.handlePanic),
		RequestID(),
		AccessLog(s.log),
		Secure(s.cfg.Production),
		CORS(s.cfg.CORSOrigins),
	)

	api := r.Group("/api")
	api.POST("/login", s.handleLogin)
	api.GET("/profile", s.handleProfile)
	api.POST("/logout", s.handleLogout)
	api.GET("/health", s.handleHealth)

	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Not found")
	})
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server stopped")
		}
	}()
	s.log.Info().Str("addr", listener.Addr().String()).Bool("open_login", s.creds.Open()).Msg("listening")
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handlePanic(c *gin.Context, recovered any) {
	s.log.Error().Interface("panic", recovered).Str("request_id", GetRequestID(c)).Msg("handler panicked")
	abortWithError(c, http.StatusInternalServerError, "Internal server error")
}

func (s *Server) cookieTTL() time.Duration {
	if s.tokens == nil {
		return model.DefaultTokenTTL
	}
	return s.tokens.TTL()
}
