package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tinytelemetry/orbit/internal/authclient"
	"github.com/tinytelemetry/orbit/internal/duckdb"
	"github.com/tinytelemetry/orbit/internal/logging"
	"github.com/tinytelemetry/orbit/internal/model"
	"github.com/tinytelemetry/orbit/internal/session"
	"github.com/tinytelemetry/orbit/internal/spacex"
	"github.com/tinytelemetry/orbit/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "orbit-tui",
		Short:         "Browse SpaceX launches and rockets in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("TUI requires a real terminal")
			}
			rt, err := openRuntime(cmd, configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runTUI(cmd.Context(), rt)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("Orbit CLI - Terminal Client\n"+
		"  Version:    %s\n"+
		"  Commit:     %s\n"+
		"  Built:      %s\n"+
		"  Go version: %s\n", version, commit, buildTime, goVersion))

	pf := cmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/orbit/config.yml)")
	pf.String("api-url", "", "authentication service URL")
	pf.String("spacex-url", "", "SpaceX API base URL")
	pf.String("fixture", "", "browse a local JSON/YAML catalog instead of the SpaceX API")
	pf.String("log-level", "", "trace, debug, info, warn or error")

	cmd.AddCommand(newLoginCmd(&configPath), newLogoutCmd(&configPath), newWhoamiCmd(&configPath))
	return cmd
}

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg    cliConfig
	logger *logging.Logger
	store  *session.FileStore
	gate   *session.Gate
	auth   *authclient.Client
}

func openRuntime(cmd *cobra.Command, configPath string) (*runtime, error) {
	cfg, err := loadCLIConfig(configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	gate, err := session.Open(store)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("reading session: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		gate:   gate,
		auth:   authclient.New(cfg.APIURL, cfg.HTTPTimeout, logger.Logger),
	}, nil
}

func (r *runtime) Close() {
	_ = r.logger.Close()
}

// catalog opens the data source: the fixture store when configured,
// otherwise the SpaceX API.
func (r *runtime) catalog(ctx context.Context) (model.Catalog, string, func(), error) {
	log := r.logger.Logger
	if r.cfg.Fixture != "" {
		store, err := duckdb.Open(ctx, r.cfg.Fixture, duckdb.Options{
			QueryTimeout: r.cfg.HTTPTimeout,
			Logger:       log,
		})
		if err != nil {
			return nil, "", nil, fmt.Errorf("opening fixture: %w", err)
		}
		return store, "fixture " + shortenPath(r.cfg.Fixture), func() { _ = store.Close() }, nil
	}

	client := spacex.New(spacex.Config{
		BaseURL:   r.cfg.SpaceXURL,
		Timeout:   r.cfg.HTTPTimeout,
		UserAgent: "orbit-tui/" + version,
		Logger:    log,
	})
	return client, hostOf(r.cfg.SpaceXURL), func() {}, nil
}

func runTUI(ctx context.Context, rt *runtime) error {
	catalog, source, closeCatalog, err := rt.catalog(ctx)
	if err != nil {
		return err
	}
	defer closeCatalog()

	app := tui.New(tui.Options{
		Catalog:          catalog,
		Gate:             rt.gate,
		Auth:             rt.auth,
		Logger:           logging.Component(rt.logger.Logger, "tui"),
		CarouselInterval: rt.cfg.CarouselInterval,
		RequestTimeout:   rt.cfg.HTTPTimeout,
		Source:           source,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func hostOf(rawURL string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	host, _, _ := strings.Cut(s, "/")
	return host
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
