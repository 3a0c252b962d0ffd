package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecodispensa/dispensa/internal/ai"
	"github.com/ecodispensa/dispensa/internal/backup"
	"github.com/ecodispensa/dispensa/internal/handler"
	"github.com/ecodispensa/dispensa/internal/middleware"
	"github.com/ecodispensa/dispensa/internal/notify"
	"github.com/ecodispensa/dispensa/internal/remote"
	"github.com/ecodispensa/dispensa/internal/store"
	"github.com/ecodispensa/dispensa/internal/sync"
	ws "github.com/ecodispensa/dispensa/internal/websocket"
)

// Config carries the pieces main assembles before building the server.
type Config struct {
	PushVAPIDPublicKey  string
	PushVAPIDPrivateKey string
	Backup              backup.Config
	AI                  ai.Config
}

type Server struct {
	hub           *ws.Hub
	engine        *sync.Engine
	remoteClient  *remote.Client
	pantryH       *handler.PantryHandler
	shoppingH     *handler.ShoppingHandler
	chefH         *handler.ChefHandler
	visionH       *handler.VisionHandler
	authH         *handler.AuthHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	notifier      *notify.Scheduler
	backupManager *backup.Manager
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, remoteClient *remote.Client, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	engine := sync.New(remoteClient, logger.With("component", "sync"), func(entity string) {
		hub.Broadcast(ws.NewMessage(entity, "changed", "", nil))
	})

	pushStore := store.NewPushStore(db)
	notifStore := store.NewNotificationStore(db)
	settingsStore := store.NewSettingsStore(db)

	aiClient := ai.NewClient(cfg.AI)
	chef := ai.NewChef(aiClient, logger.With("component", "chef"))

	backupMgr := backup.NewManager(cfg.Backup, engine, settingsStore, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	})

	var pushSvc *notify.Service
	var notifier *notify.Scheduler
	var pushH *handler.PushHandler
	if cfg.PushVAPIDPublicKey != "" && cfg.PushVAPIDPrivateKey != "" {
		pushSvc = notify.NewService(cfg.PushVAPIDPublicKey, cfg.PushVAPIDPrivateKey)
		notifier = notify.NewScheduler(pushSvc, pushStore, notifStore, engine)
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push"))
	}

	return &Server{
		hub:           hub,
		engine:        engine,
		remoteClient:  remoteClient,
		pantryH:       handler.NewPantryHandler(engine),
		shoppingH:     handler.NewShoppingHandler(engine),
		chefH:         handler.NewChefHandler(chef, engine),
		visionH:       handler.NewVisionHandler(aiClient),
		authH:         handler.NewAuthHandler(remoteClient, logger.With("component", "auth")),
		pushH:         pushH,
		backupH:       handler.NewBackupHandler(backupMgr, settingsStore, logger.With("component", "backup")),
		notifier:      notifier,
		backupManager: backupMgr,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// Engine returns the sync engine, for session-driven reloads.
func (s *Server) Engine() *sync.Engine { return s.engine }

// Notifier returns the expiry reminder scheduler; nil when VAPID keys
// are not configured.
func (s *Server) Notifier() *notify.Scheduler { return s.notifier }

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager { return s.backupManager }

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter { return s.rateLimiter }

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Account
	mux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.SignUp))
	mux.HandleFunc("POST /api/auth/signin", s.rateLimitedHandler(s.authH.SignIn))
	mux.HandleFunc("POST /api/auth/signout", s.authH.SignOut)
	mux.HandleFunc("GET /api/auth/session", s.authH.Session)

	// Pantry
	mux.HandleFunc("GET /api/pantry", s.pantryH.List)
	mux.HandleFunc("POST /api/pantry", s.pantryH.Create)
	mux.HandleFunc("PATCH /api/pantry/{id}", s.pantryH.Update)
	mux.HandleFunc("DELETE /api/pantry/{id}", s.pantryH.Delete)

	// Shopping list
	mux.HandleFunc("GET /api/shopping", s.shoppingH.List)
	mux.HandleFunc("POST /api/shopping", s.shoppingH.Create)
	mux.HandleFunc("POST /api/shopping/{id}/check", s.shoppingH.ToggleChecked)
	mux.HandleFunc("POST /api/shopping/clear-checked", s.shoppingH.ClearChecked)
	mux.HandleFunc("POST /api/shopping/move-to-pantry", s.shoppingH.MoveToPantry)

	// Recipe generation and vision share one per-client limit, since
	// both sit on the same metered service.
	mux.HandleFunc("POST /api/chef/suggest", s.aiLimitedHandler(s.chefH.Suggest))
	mux.HandleFunc("POST /api/chef/search", s.aiLimitedHandler(s.chefH.Search))
	mux.HandleFunc("POST /api/chef/cook", s.chefH.Cook)
	mux.HandleFunc("POST /api/vision/identify", s.aiLimitedHandler(s.visionH.Identify))

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}

	// Backup
	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backup/run", s.backupH.RunNow)
	mux.HandleFunc("GET /api/backup/settings", s.backupH.GetSettings)
	mux.HandleFunc("PUT /api/backup/settings", s.backupH.UpdateSettings)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return s.limited(h, 10, time.Minute)
}

func (s *Server) aiLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return s.limited(h, 20, time.Minute)
}

func (s *Server) limited(h http.HandlerFunc, limit int, window time.Duration) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, limit, window)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
