// Command wordsearch starts the Word Search Translate server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags (each with an environment variable) control host/port, the puzzle
// directory, the settings file, log level, and optional ngrok tunneling for
// easy external access during development. A .env file is loaded first.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/wordsearch-translate/api"
	"github.com/wricardo/wordsearch-translate/game/config"
	"github.com/wricardo/wordsearch-translate/game/service"
	"github.com/wricardo/wordsearch-translate/game/session"
	"github.com/wricardo/wordsearch-translate/game/source"
	"github.com/wricardo/wordsearch-translate/transport/mcp"
	"github.com/wricardo/wordsearch-translate/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Word Search Translate Server"
)

// sessionExpiryInterval is how often expired sessions are pruned
const sessionExpiryInterval = time.Hour

// options collects the command line configuration
type options struct {
	host         string
	port         int
	puzzleDir    string
	settingsFile string
	logLevel     string
	apiURL       string

	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

// main loads .env, parses flags, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("wordsearch failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "wordsearch",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "puzzle-dir",
				Usage:   "Directory of puzzle source files (*.txt); bundled sources are always available",
				Sources: cli.EnvVars("PUZZLE_DIR"),
			},
			&cli.StringFlag{
				Name:    "settings",
				Value:   "settings.toml",
				Usage:   "TOML settings file; missing file means defaults",
				Sources: cli.EnvVars("SETTINGS_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "External API reused by stdio-mcp when reachable",
				Sources: cli.EnvVars("WORDSEARCH_API_URL"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serverAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  stdioMCPAction,
			},
		},
		Action: serverAction,
	}
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:         cmd.String("host"),
		port:         cmd.Int("port"),
		puzzleDir:    cmd.String("puzzle-dir"),
		settingsFile: cmd.String("settings"),
		logLevel:     cmd.String("log-level"),
		apiURL:       cmd.String("api-url"),
		ngrokEnabled: cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

// setupLogging installs a console logger on w at the given level
func setupLogging(level string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	return nil
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	if err := setupLogging(opts.logLevel, os.Stderr); err != nil {
		return err
	}
	log.Info().Str("version", Version).Str("mode", "server").Msg("starting " + AppName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	svcs.startBackground(ctx)

	return runHTTPServer(ctx, opts, svcs.game)
}

func stdioMCPAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	// stdout carries the MCP protocol
	if err := setupLogging(opts.logLevel, os.Stderr); err != nil {
		return err
	}
	log.Info().Str("version", Version).Str("mode", "stdio-mcp").Msg("starting " + AppName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	svcs.startBackground(ctx)

	return runStdioMCPWithInternalServer(ctx, opts, svcs.game)
}

// services holds the wired game layer
type services struct {
	settings config.Settings
	catalog  *config.Manager
	sessions *session.Manager
	game     service.GameService
}

// initializeServices loads settings and wires the catalog, acquirer, session
// store and game service.
func initializeServices(opts options) (*services, error) {
	settings, err := config.LoadSettings(opts.settingsFile)
	if err != nil {
		return nil, err
	}

	catalog, err := config.NewManager(opts.puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create puzzle catalog: %w", err)
	}
	if err := catalog.SetDefault(settings.FallbackSource); err != nil {
		return nil, fmt.Errorf("fallback source %q: %w", settings.FallbackSource, err)
	}

	acquirer := source.NewAcquirer(settings.SourceConfig(), catalog)
	sessions := session.NewManager()

	game := service.NewGameService(sessions, catalog, acquirer,
		service.WithDisplayTranslation(settings.DisplayTranslation),
		service.WithIterationMethod(settings.IterationMethod),
	)

	log.Info().
		Str("puzzle_dir", opts.puzzleDir).
		Str("fallback", settings.FallbackSource).
		Str("remote", settings.RemoteURL).
		Str("iteration", settings.IterationMethod.String()).
		Bool("display_translation", settings.DisplayTranslation).
		Msg("services initialized")

	return &services{
		settings: settings,
		catalog:  catalog,
		sessions: sessions,
		game:     game,
	}, nil
}

// startBackground runs the catalog watcher and session expiry until ctx is done
func (s *services) startBackground(ctx context.Context) {
	go func() {
		if err := s.catalog.Watch(ctx); err != nil {
			log.Warn().Err(err).Msg("puzzle directory watcher stopped")
		}
	}()
	go s.sessions.RunExpiry(ctx, sessionExpiryInterval, s.settings.SessionMaxAge.Duration)
}

// newHTTPHandler combines the REST API, WebSocket and the /mcp endpoint
func newHTTPHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel. It returns when ctx is cancelled.
func runHTTPServer(ctx context.Context, opts options, gameService service.GameService) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub)

	addr := opts.addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newHTTPHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, handler)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serveErr:
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Info().Str("domain", opts.ngrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// externalAPIAvailable reports whether an API server answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(strings.TrimSuffix(baseURL, "/") + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the API on a random loopback port and returns its base URL
func startInternalServer(ctx context.Context, gameService service.GameService) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{
		Handler: api.NewServer(gameService, hub),
	}

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	return fmt.Sprintf("http://%s", listener.Addr().String()), httpServer, nil
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses the external API when one answers; otherwise it starts a minimal
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, opts options, gameService service.GameService) error {
	baseURL := opts.apiURL
	log.Info().Str("url", baseURL).Msg("checking for external API server")

	if externalAPIAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		internalURL, httpServer, err := startInternalServer(ctx, gameService)
		if err != nil {
			return err
		}
		defer httpServer.Close()
		baseURL = internalURL
		log.Info().Str("url", baseURL).Msg("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
