package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/apppaint/apppaint/internal/auth"
	"github.com/apppaint/apppaint/internal/collab"
	"github.com/apppaint/apppaint/internal/config"
	mw "github.com/apppaint/apppaint/internal/middleware"
	"github.com/apppaint/apppaint/internal/profile"
	"github.com/apppaint/apppaint/internal/store"
	"github.com/apppaint/apppaint/internal/template"
	"github.com/apppaint/apppaint/internal/typeid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	seeded, err := store.Seed(ctx, st)
	if err != nil {
		slog.Error("seed store", "error", err)
		os.Exit(1)
	}
	if seeded {
		slog.Info("seeded sample drawing and default profile")
	}

	templateService := template.NewService(st, template.Options{
		CanvasWidth:    cfg.CanvasWidth,
		CanvasHeight:   cfg.CanvasHeight,
		PreviewPadding: cfg.PreviewPadding,
		ThumbnailSize:  cfg.ThumbnailSize,
	})
	templateHandler := template.NewHandler(templateService)

	profileService := profile.NewService(st)
	profileHandler := profile.NewHandler(profileService)

	authService := auth.NewService(st, cfg.TicketSecret, cfg.TicketTTL)
	authHandler := auth.NewHandler(authService)

	hub := collab.NewHub()
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	templateHandler.Routes(api)
	profileHandler.Routes(api)
	api.HandleFunc("/sessions", authHandler.Open).Methods("POST")

	ws := &wsHandler{
		hub:            hub,
		store:          st,
		profiles:       profileService,
		originPatterns: cfg.OriginPatterns(),
	}
	r.Handle("/ws/templates/{id}", authService.RequireTicket(ws)).Methods("GET")

	addr := ":" + strconv.Itoa(cfg.Port)
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
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type wsHandler struct {
	hub            *collab.Hub
	store          store.Store
	profiles       *profile.Service
	originPatterns []string
}

// ServeHTTP upgrades a ticketed request and runs one editing session until
// the connection closes.
func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	style, err := h.profiles.SessionStyle(r.Context(), session.ProfileID)
	if err != nil {
		slog.Warn("session style", "profile", session.ProfileID, "error", err)
	}

	displayName := "guest-" + uuid.New().String()[:8]
	if session.ProfileID != "" {
		if p, err := h.profiles.Get(r.Context(), session.ProfileID); err == nil {
			displayName = p.Name
		}
	}

	editor, err := collab.NewSession(r.Context(), h.store, session.TemplateID, style, typeid.NewShapeID)
	if err != nil {
		slog.Error("open editing session", "template", session.TemplateID, "error", err)
		http.Error(w, "template not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := collab.NewClient(h.hub, conn, editor, typeid.New(typeid.PrefixClient), session.ProfileID, displayName)
	h.hub.Register(client)

	go client.WritePump(ctx)
	go client.ReadPump(ctx)
	client.Run(ctx)
}
