package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/orbit/internal/auth"
	"github.com/tinytelemetry/orbit/internal/httpserver"
	"github.com/tinytelemetry/orbit/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// runServer starts the authentication API and blocks until a signal arrives.
func runServer(parent context.Context, cfg appConfig) error {
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Logger

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize tokens: %w", err)
	}
	creds, err := auth.NewCredentials(cfg.Auth.Username, cfg.Auth.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to initialize credentials: %w", err)
	}
	if creds.Open() {
		log.Warn().Msg("auth.password-hash is not set: any non-empty username and password will be accepted")
	}

	if cfg.production() {
		gin.SetMode(gin.ReleaseMode)
	}

	apiServer := httpserver.NewServer(httpserver.Config{
		Addr:        cfg.Addr,
		Production:  cfg.production(),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	}, tokens, creds)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(shutdownTimeout)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg, apiServer.Addr(), creds.Open())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return apiServer.Stop()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server: shutdown error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func printStartupBanner(cfg appConfig, addr string, openLogin bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	warn := yellow.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╦═╗╔╗ ╦╔╦╗
    ║ ║╠╦╝╠╩╗║ ║
    ╚═╝╩╚═╚═╝╩ ╩`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render("http://"+addr+"/api")))
	lines = append(lines, fmt.Sprintf("    %s  CORS           %s", check, dim.Render(strings.Join(cfg.CORSOrigins, ", "))))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Auth"))
	lines = append(lines, "")
	if openLogin {
		lines = append(lines, fmt.Sprintf("    %s  Login          %s", warn, yellow.Render("open (any credentials)")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Login          %s", check, dim.Render(cfg.Auth.Username)))
	}
	lines = append(lines, fmt.Sprintf("    %s  Token TTL      %s", check, dim.Render(cfg.TokenTTL.String())))
	lines = append(lines, fmt.Sprintf("    %s  Environment    %s", check, dim.Render(cfg.Env)))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
