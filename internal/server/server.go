// Package server orchestrates all components: NATS client, DB, registry, dispatcher, HTTP bridge.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/webview-bridge/internal/config"
	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/commsutil"
	"github.com/morezero/webview-bridge/pkg/db"
	"github.com/morezero/webview-bridge/pkg/dispatcher"
	"github.com/morezero/webview-bridge/pkg/events"
	"github.com/morezero/webview-bridge/pkg/features"
	"github.com/morezero/webview-bridge/pkg/modules"
	"github.com/morezero/webview-bridge/pkg/registry"
)

const logPrefix = "server:server"

// maxRequestBytes caps the size of one bridge request body.
const maxRequestBytes = 1 << 20

// Server is the webview-bridge orchestrator.
type Server struct {
	cfg        *config.Config
	feats      *features.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server
	reg        *registry.Registry
	disp       *dispatcher.Dispatcher
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	var logLevel slog.Level
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info(fmt.Sprintf("%s - Starting webview-bridge", logPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Step 1: Load feature flags
	feats := features.Load(cfg.FeaturesFile)
	s := &Server{cfg: cfg, feats: feats}

	// Determine bridge subject
	bridgeSubject := cfg.BridgeSubject
	if bridgeSubject == "" {
		bridgeSubject = commsutil.SubjectBridge
	}
	slog.Info(fmt.Sprintf("%s - Bridge subject: %s", logPrefix, bridgeSubject))

	// Step 2: Connect to NATS
	nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
	}
	s.nc = nc
	slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, cfg.COMMSURL))

	// Step 3: Connect to database when configured. Without one the storage
	// module keeps entries in memory.
	var storageBackend modules.StorageBackend
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			nc.Close()
			return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
		}
		s.pool = pool

		if cfg.RunMigrations {
			if err := db.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				nc.Close()
				return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
			}
		}
		storageBackend = modules.NewKVBackend(db.NewKVStore(pool))
	}

	// Step 4: Create registry and register modules
	reg := registry.NewRegistry()
	s.reg = reg

	reg.RegisterIf(modules.NewEcho(), feats.ModuleEnabled("echo"))
	reg.RegisterIf(modules.NewSystem(cfg.AppName, cfg.AppVersion, cfg.Platform, reg), feats.ModuleEnabled("system"))
	reg.RegisterIf(modules.NewDevice(cfg.Platform, "", "", ""), feats.ModuleEnabled("device"))
	reg.RegisterIf(modules.NewHaptics(nil), feats.ModuleEnabled("haptics"))
	reg.RegisterIf(modules.NewClipboard(), feats.ModuleEnabled("clipboard"))
	reg.RegisterIf(modules.NewStorage(cfg.AppName, storageBackend), feats.ModuleEnabled("storage"))
	slog.Info(fmt.Sprintf("%s - Registered %d modules: %v", logPrefix, reg.Count(), reg.Names()))

	// Step 5: Create dispatcher with event publishing
	publisher := events.NewCommsPublisher(nc, nil)
	disp := dispatcher.NewDispatcher(reg, publisher)
	s.disp = disp

	// Step 6: Subscribe to the bridge subject
	requestTimeout := cfg.RequestTimeout
	activeFlags := feats.ActiveFlags()
	sub, err := nc.Subscribe(bridgeSubject, func(msg *comms.Msg) {
		// One goroutine per message: a slow module must not stall the
		// subscription for other callers.
		go func() {
			reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()

			data := disp.DispatchRaw(reqCtx, msg.Data, s.newInvocation(activeFlags))
			if err := msg.Respond(data); err != nil {
				slog.Error(fmt.Sprintf("%s - failed to respond: %v", logPrefix, err))
			}
		}()
	})
	if err != nil {
		s.closeBackends()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, bridgeSubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, bridgeSubject))

	// Step 7: Start HTTP server (bridge endpoint, WebSocket, health, status page)
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/bridge", s.handleBridge(ctx, activeFlags))
	mux.HandleFunc("/ws", s.handleWS(ctx, activeFlags))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthCtx, cancel := context.WithTimeout(r.Context(), cfg.HealthCheckTimeout)
		defer cancel()
		h := s.health(healthCtx)
		w.Header().Set("Content-Type", "application/json")
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = fmt.Sprintf(":%d", cfg.HTTPPort)
	}
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Webview-bridge is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	// Graceful shutdown
	sub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()
	if s.pool != nil {
		s.pool.Close()
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func (s *Server) closeBackends() {
	if s.pool != nil {
		s.pool.Close()
	}
	s.nc.Close()
}

// newInvocation builds the per-request ambient data handed to module handlers.
func (s *Server) newInvocation(activeFlags []string) *capability.Invocation {
	return &capability.Invocation{
		TraceID:    uuid.NewString(),
		Platform:   s.cfg.Platform,
		AppVersion: s.cfg.AppVersion,
		Features:   activeFlags,
	}
}

// Health is the health endpoint payload.
type Health struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks reports per-backend health.
type HealthChecks struct {
	Comms    bool `json:"comms"`
	Database bool `json:"database"`
}

// health checks the NATS connection and, when configured, the database.
func (s *Server) health(ctx context.Context) *Health {
	checks := HealthChecks{
		Comms:    s.nc != nil && s.nc.IsConnected(),
		Database: true,
	}
	if s.pool != nil {
		checks.Database = s.pool.Ping(ctx) == nil
	}
	status := "healthy"
	if !checks.Comms || !checks.Database {
		status = "unhealthy"
	}
	return &Health{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// handleBridge returns the HTTP handler for POST /bridge. The body is one
// request envelope; the response is always a response envelope.
func (s *Server) handleBridge(ctx context.Context, activeFlags []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}

		reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()

		data := s.disp.DispatchRaw(reqCtx, body, s.newInvocation(activeFlags))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// upgrader accepts any origin. The bridge serves embedded web content, not
// public browsers.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS returns the WebSocket handler for /ws. Each text message is one
// request envelope; requests on one connection dispatch concurrently and the
// responses carry the request ids for correlation.
func (s *Server) handleWS(ctx context.Context, activeFlags []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - websocket upgrade: %v", logPrefix, err))
			return
		}
		defer conn.Close()
		slog.Debug(fmt.Sprintf("%s - websocket client connected from %s", logPrefix, r.RemoteAddr))

		var writeMu sync.Mutex
		var wg sync.WaitGroup
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Debug(fmt.Sprintf("%s - websocket read: %v", logPrefix, err))
				}
				break
			}

			wg.Add(1)
			go func(raw []byte) {
				defer wg.Done()
				reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
				defer cancel()

				data := s.disp.DispatchRaw(reqCtx, raw, s.newInvocation(activeFlags))

				writeMu.Lock()
				defer writeMu.Unlock()
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					slog.Error(fmt.Sprintf("%s - websocket write: %v", logPrefix, err))
				}
			}(message)
		}
		wg.Wait()
	}
}

// homePageTemplate is the HTML for the bridge status page (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Webview Bridge</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2, h3 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .stat { font-weight: bold; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>Webview Bridge</h1>
  <p class="meta">Bridge health and registered modules for {{.AppName}} {{.AppVersion}} ({{.Platform}}).</p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Comms: {{if .Health.Checks.Comms}}<span class="stat">OK</span>{{else}}<span class="error">Failed</span>{{end}}</p>
    <p>Database: {{if .Health.Checks.Database}}<span class="stat">OK</span>{{else}}<span class="error">Failed</span>{{end}}</p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Modules</h2>
    <p>Registered modules: <span class="stat">{{len .Modules}}</span></p>
    {{if not .Modules}}
    <p>No modules registered.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Module</th><th>Actions</th></tr>
      </thead>
      <tbody>
        {{range .Modules}}
        <tr>
          <td>{{.Name}}</td>
          <td>{{range .Actions}}{{.}} {{end}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>

  <section>
    <h2>Feature flags</h2>
    {{if not .Flags}}
    <p>No flags active.</p>
    {{else}}
    <p>{{range .Flags}}{{.}} {{end}}</p>
    {{end}}
  </section>
</body>
</html>
`

// moduleRow is one row in the home page module table.
type moduleRow struct {
	Name    string
	Actions []string
}

// homeData is the data passed to the home page template.
type homeData struct {
	AppName    string
	AppVersion string
	Platform   string
	Health     *Health
	Modules    []moduleRow
	Flags      []string
}

// handleHome returns an HTTP handler for the bridge status page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()

		data := homeData{
			AppName:    s.cfg.AppName,
			AppVersion: s.cfg.AppVersion,
			Platform:   s.cfg.Platform,
			Health:     s.health(ctx),
			Flags:      s.feats.ActiveFlags(),
		}
		for _, name := range s.reg.Names() {
			if mod, ok := s.reg.Lookup(name); ok {
				data.Modules = append(data.Modules, moduleRow{Name: name, Actions: mod.Actions()})
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
