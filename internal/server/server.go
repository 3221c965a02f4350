package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/account"
	"github.com/JPedro1988/app-kidquest/internal/backup"
	"github.com/JPedro1988/app-kidquest/internal/config"
	"github.com/JPedro1988/app-kidquest/internal/email"
	"github.com/JPedro1988/app-kidquest/internal/handler"
	"github.com/JPedro1988/app-kidquest/internal/middleware"
	"github.com/JPedro1988/app-kidquest/internal/points"
	"github.com/JPedro1988/app-kidquest/internal/push"
	"github.com/JPedro1988/app-kidquest/internal/reward"
	"github.com/JPedro1988/app-kidquest/internal/state"
	"github.com/JPedro1988/app-kidquest/internal/store"
	"github.com/JPedro1988/app-kidquest/internal/task"
	"github.com/JPedro1988/app-kidquest/internal/token"
	ws "github.com/JPedro1988/app-kidquest/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH    *handler.AuthHandler
	childH   *handler.ChildHandler
	taskH    *handler.TaskHandler
	rewardH  *handler.RewardHandler
	pointsH  *handler.PointsHandler
	pushH    *handler.PushHandler
	backupH  *handler.BackupHandler
	suggestH *handler.SuggestionsHandler

	sessionStore *store.SessionStore
	userStore    *store.UserStore
	verifier     *token.Verifier
	rateLimiter  *middleware.RateLimiter
	synchronizer *state.Synchronizer
	backupMgr    *backup.Manager

	logger *slog.Logger
}

// New wires stores, domain services and handlers together. The email
// service may be disabled; push and backup degrade to no-ops without
// configuration.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)
	sessionStore := store.NewSessionStore(db, time.Duration(cfg.SessionTTLHrs)*time.Hour)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	ledger := points.NewLedger(taskStore, rewardStore, childStore)
	accounts := account.NewService(userStore)

	taskSvc := task.NewService(taskStore, childStore, ledger, logger)
	rewardSvc := reward.NewService(rewardStore, childStore, ledger, logger)

	vapidPub, vapidPriv, err := push.EnsureVAPIDKeys(cfg.DataDir, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("resolve vapid keys: %w", err)
	}
	pushSvc := push.NewService(vapidPub, vapidPriv, cfg.PushSubscriber)
	notifier := push.NewNotifier(pushSvc, pushStore, childStore, hub, logger)
	taskSvc.SetNotifier(notifier)

	emailSvc, err := email.NewService(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, logger)
	if err != nil {
		return nil, fmt.Errorf("init email: %w", err)
	}

	verifier := token.NewVerifier(cfg.JWTSecret, time.Duration(cfg.TokenTTLHrs)*time.Hour)

	snapshotPath := filepath.Join(cfg.DataDir, "snapshot.json")
	synchronizer := state.NewSynchronizer(snapshotLoader(childStore, taskStore, rewardStore, ledger), snapshotPath, logger)
	if err := synchronizer.LoadFromDisk(); err != nil {
		logger.Warn("snapshot load failed, starting empty", "error", err)
	}

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		DBPath:        cfg.DBPath,
		Passphrase:    cfg.BackupPassphrase,
		ScheduleHour:  cfg.BackupHour,
		RetentionDays: cfg.BackupRetention,
	}, db, backupStore, logger)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(accounts, sessionStore, userStore, verifier, emailSvc, false, logger),
		childH:       handler.NewChildHandler(childStore, ledger, synchronizer, hub, logger.With("component", "child")),
		taskH:        handler.NewTaskHandler(taskSvc, synchronizer, hub, logger.With("component", "task_handler")),
		rewardH:      handler.NewRewardHandler(rewardSvc, childStore, synchronizer, notifier, hub, logger.With("component", "reward_handler")),
		pointsH:      handler.NewPointsHandler(ledger, synchronizer, childStore, logger.With("component", "points")),
		pushH:        handler.NewPushHandler(pushSvc, pushStore, logger.With("component", "push_handler")),
		backupH:      handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		suggestH:     handler.NewSuggestionsHandler(),
		sessionStore: sessionStore,
		userStore:    userStore,
		verifier:     verifier,
		rateLimiter:  middleware.NewRateLimiter(),
		synchronizer: synchronizer,
		backupMgr:    backupMgr,
		logger:       logger,
	}, nil
}

// snapshotLoader builds the authoritative snapshot for the synchronizer.
// Balances come from the ledger recompute, never from staged values.
func snapshotLoader(children *store.ChildStore, tasks *store.TaskStore, rewards *store.RewardStore, ledger *points.Ledger) state.Loader {
	return func() (*state.Snapshot, error) {
		snap := &state.Snapshot{}

		allChildren, err := children.ListAll()
		if err != nil {
			return nil, fmt.Errorf("load children: %w", err)
		}
		for _, c := range allChildren {
			b, err := ledger.Reconcile(c.ID)
			if err != nil {
				return nil, fmt.Errorf("reconcile child %d: %w", c.ID, err)
			}
			snap.Balances = append(snap.Balances, b)
		}

		allTasks, err := tasks.List()
		if err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
		snap.Tasks = allTasks

		allRewards, err := rewards.ListAll()
		if err != nil {
			return nil, fmt.Errorf("load rewards: %w", err)
		}
		snap.Rewards = allRewards

		return snap, nil
	}
}

func (s *Server) SessionStore() *store.SessionStore { return s.sessionStore }
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}
func (s *Server) BackupManager() *backup.Manager     { return s.backupMgr }
func (s *Server) Synchronizer() *state.Synchronizer  { return s.synchronizer }

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("POST /api/register", s.rateLimited(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore, s.verifier)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.Handle("POST /api/invite", middleware.RequireParent(http.HandlerFunc(s.authH.Invite)))

	// Children
	mux.Handle("POST /api/children", middleware.RequireParent(http.HandlerFunc(s.childH.Create)))
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.Handle("PUT /api/children/{id}", middleware.RequireParent(http.HandlerFunc(s.childH.Update)))
	mux.Handle("DELETE /api/children/{id}", middleware.RequireParent(http.HandlerFunc(s.childH.Delete)))
	mux.HandleFunc("GET /api/children/{id}/points", s.childH.Points)

	// Tasks
	mux.Handle("POST /api/tasks", middleware.RequireParent(http.HandlerFunc(s.taskH.Create)))
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.Handle("POST /api/tasks/{id}/approve", middleware.RequireParent(http.HandlerFunc(s.taskH.Approve)))
	mux.Handle("POST /api/tasks/{id}/reject", middleware.RequireParent(http.HandlerFunc(s.taskH.Reject)))
	mux.Handle("DELETE /api/tasks/{id}", middleware.RequireParent(http.HandlerFunc(s.taskH.Delete)))

	// Rewards
	mux.Handle("POST /api/rewards", middleware.RequireParent(http.HandlerFunc(s.rewardH.Create)))
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.Handle("PUT /api/rewards/{id}", middleware.RequireParent(http.HandlerFunc(s.rewardH.Update)))
	mux.HandleFunc("POST /api/rewards/{id}/claim", s.rewardH.Claim)
	mux.Handle("POST /api/rewards/{id}/fulfill", middleware.RequireParent(http.HandlerFunc(s.rewardH.Fulfill)))
	mux.Handle("DELETE /api/rewards/{id}", middleware.RequireParent(http.HandlerFunc(s.rewardH.Delete)))
	mux.HandleFunc("GET /api/claims", s.rewardH.Claims)

	// Suggestion catalog
	mux.HandleFunc("GET /api/suggestions", s.suggestH.Catalog)

	// Points and summary
	mux.HandleFunc("GET /api/points", s.pointsH.Balances)
	mux.HandleFunc("GET /api/summary", s.pointsH.Summary)

	// Push notifications
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)

	// Backups
	mux.Handle("POST /api/backups", middleware.RequireParent(http.HandlerFunc(s.backupH.Run)))
	mux.Handle("GET /api/backups", middleware.RequireParent(http.HandlerFunc(s.backupH.List)))
	mux.Handle("GET /api/backups/status", middleware.RequireParent(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/backups/{id}/restore", middleware.RequireParent(http.HandlerFunc(s.backupH.Restore)))

	// Change feed
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.Ping(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
