package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aperture/aperture/backend-go/internal/auth"
	"github.com/aperture/aperture/backend-go/internal/canvas"
	"github.com/aperture/aperture/backend-go/internal/classroom"
	"github.com/aperture/aperture/backend-go/internal/config"
	"github.com/aperture/aperture/backend-go/internal/db"
	"github.com/aperture/aperture/backend-go/internal/db/dbgen"
	"github.com/aperture/aperture/backend-go/internal/engine"
	mw "github.com/aperture/aperture/backend-go/internal/middleware"
	"github.com/aperture/aperture/backend-go/internal/note"
	"github.com/aperture/aperture/backend-go/internal/session"
	"github.com/aperture/aperture/backend-go/internal/store"
	"github.com/aperture/aperture/backend-go/internal/summary"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	queries := dbgen.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	canvasService := canvas.NewService(queries)
	canvasHandler := canvas.NewHandler(canvasService)

	noteService := note.NewService(queries)
	noteHandler := note.NewHandler(noteService)

	classroomService := classroom.NewService(queries)
	classroomHandler := classroom.NewHandler(classroomService)

	summaryService := summary.NewService(queries, cfg.SummarizerURL, cfg.SummarizerKey, cfg.SummarizerModel)
	summaryHandler := summary.NewHandler(summaryService)

	elementStore := store.NewPostgres(pool)
	fallback, err := store.NewLocal(cfg.FallbackDir)
	if err != nil {
		slog.Error("create fallback store", "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager(elementStore)

	origins := strings.Split(cfg.AllowedOrigins, ",")

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")

	api.HandleFunc("/canvases", canvasHandler.List).Methods("GET")
	api.HandleFunc("/canvases", canvasHandler.Create).Methods("POST")
	api.HandleFunc("/canvases/{canvasId}", canvasHandler.Get).Methods("GET")
	api.HandleFunc("/canvases/{canvasId}", canvasHandler.Rename).Methods("PUT")
	api.HandleFunc("/canvases/{canvasId}", canvasHandler.Delete).Methods("DELETE")
	api.HandleFunc("/canvases/{canvasId}/elements", canvasHandler.GetElements).Methods("GET")
	api.HandleFunc("/canvases/{canvasId}/elements", canvasHandler.SaveElements).Methods("PUT")

	api.HandleFunc("/notes", noteHandler.List).Methods("GET")
	api.HandleFunc("/notes", noteHandler.Create).Methods("POST")
	api.HandleFunc("/notes/{noteId}", noteHandler.Get).Methods("GET")
	api.HandleFunc("/notes/{noteId}", noteHandler.Update).Methods("PUT")
	api.HandleFunc("/notes/{noteId}", noteHandler.Delete).Methods("DELETE")
	api.HandleFunc("/notes/{noteId}/summary", summaryHandler.Summarize).Methods("POST")
	api.HandleFunc("/notes/{noteId}/summary", summaryHandler.Latest).Methods("GET")

	api.HandleFunc("/classrooms", classroomHandler.List).Methods("GET")
	api.HandleFunc("/classrooms", classroomHandler.Create).Methods("POST")
	api.HandleFunc("/classrooms/join", classroomHandler.Join).Methods("POST")
	api.HandleFunc("/classrooms/{classroomId}", classroomHandler.Get).Methods("GET")
	api.HandleFunc("/classrooms/{classroomId}/members", classroomHandler.ListMembers).Methods("GET")
	api.HandleFunc("/classrooms/{classroomId}/members/{userId}", classroomHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/classrooms/{classroomId}/announcements", classroomHandler.ListAnnouncements).Methods("GET")
	api.HandleFunc("/classrooms/{classroomId}/announcements", classroomHandler.Announce).Methods("POST")

	// Interactive drawing sessions
	r.HandleFunc("/ws/canvas/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, sessions, authService, canvasService, elementStore, fallback, origins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		slog.Info("flushing open canvases...")
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
		sessions.Shutdown(flushCtx)
		flushCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, sessions *session.Manager,
	authSvc *auth.Service, canvasSvc *canvas.Service,
	elementStore engine.ElementStore, fallback engine.FallbackStore, origins []string) {

	canvasID := mux.Vars(r)["canvasId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// Any reader may connect, but only the owner gets a writable session.
	c, err := canvasSvc.Get(r.Context(), canvasID, userID)
	if err != nil {
		http.Error(w, "canvas not accessible", http.StatusForbidden)
		return
	}
	readOnly := c.OwnerID != userID

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(origins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	sess := session.New(sessions, conn, uuid.New().String(), canvasID, userID, readOnly, engine.Options{
		Store:    elementStore,
		Fallback: fallback,
	})
	sessions.Register(sess)

	ctx := r.Context()
	go sess.WritePump(ctx)
	sess.ReadPump(ctx)
}

// originPatterns strips schemes from configured origins for the websocket
// origin check.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
