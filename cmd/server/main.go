package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"synoptic-engine/internal/config"
	"synoptic-engine/internal/draft"
	"synoptic-engine/internal/handler"
	"synoptic-engine/internal/middleware"
	"synoptic-engine/internal/repository"
	"synoptic-engine/internal/service"
	"synoptic-engine/internal/websocket"
	"synoptic-engine/pkg/logger"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	repo, err := buildRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize remote backend")
	}

	drafts := draft.Open(cfg.Draft.Path, cfg.Draft.Retention, log)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerDoc,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
		log,
	)
	go wsManager.Run()

	sessions := service.NewManager(repo, drafts, wsManager, service.Options{
		HistoryLimit:    cfg.Engine.HistoryLimit,
		HistoryDebounce: cfg.Engine.HistoryDebounce,
		SaveDebounce:    cfg.Engine.SaveDebounce,
		OpTimeout:       cfg.Engine.OpTimeout,
		DraftInterval:   cfg.Draft.Interval,
	}, log)

	// No annotation provider wired in by default. The bulk append
	// endpoint still works without one.
	annotations := service.NewAnnotationService(nil, sessions)

	sessionHandler := handler.NewSessionHandler(sessions)
	mutationHandler := handler.NewMutationHandler(sessions)
	annotationHandler := handler.NewAnnotationHandler(sessions, annotations)
	wsHandler := handler.NewWebSocketHandler(wsManager, sessions, log)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORSMiddleware(cfg.CORS, log))

	api := r.PathPrefix("/api/v1").Subrouter()

	docs := api.PathPrefix("/documents/{id}").Subrouter()

	docs.HandleFunc("/session", sessionHandler.Open).Methods("POST", "OPTIONS")
	docs.HandleFunc("/session", sessionHandler.Get).Methods("GET", "OPTIONS")
	docs.HandleFunc("/session", sessionHandler.Close).Methods("DELETE", "OPTIONS")
	docs.HandleFunc("/undo", sessionHandler.Undo).Methods("POST", "OPTIONS")
	docs.HandleFunc("/redo", sessionHandler.Redo).Methods("POST", "OPTIONS")
	docs.HandleFunc("/save", sessionHandler.ForceSave).Methods("POST", "OPTIONS")
	docs.HandleFunc("/conflict", sessionHandler.ConflictStatus).Methods("GET", "OPTIONS")
	docs.HandleFunc("/orphans", sessionHandler.Orphans).Methods("GET", "OPTIONS")

	docs.HandleFunc("/pages", mutationHandler.AddPage).Methods("POST", "OPTIONS")
	docs.HandleFunc("/pages/move", mutationHandler.MovePage).Methods("POST", "OPTIONS")
	docs.HandleFunc("/pages/{page}", mutationHandler.UpdatePage).Methods("PATCH", "OPTIONS")
	docs.HandleFunc("/pages/{page}", mutationHandler.DeletePage).Methods("DELETE", "OPTIONS")

	docs.HandleFunc("/pages/{page}/blocks", mutationHandler.AddBlock).Methods("POST", "OPTIONS")
	docs.HandleFunc("/pages/{page}/blocks/reorder", mutationHandler.ReorderBlock).Methods("POST", "OPTIONS")
	docs.HandleFunc("/pages/{page}/blocks/{block}", mutationHandler.UpdateBlock).Methods("PATCH", "OPTIONS")
	docs.HandleFunc("/pages/{page}/blocks/{block}", mutationHandler.DeleteBlock).Methods("DELETE", "OPTIONS")
	docs.HandleFunc("/pages/{page}/blocks/{block}/preset", mutationHandler.ApplyPreset).Methods("POST", "OPTIONS")

	docs.HandleFunc("/word-groups", annotationHandler.AddWordGroup).Methods("POST", "OPTIONS")
	docs.HandleFunc("/word-groups/{group}", annotationHandler.UpdateWordGroup).Methods("PATCH", "OPTIONS")
	docs.HandleFunc("/word-groups/{group}", annotationHandler.DeleteWordGroup).Methods("DELETE", "OPTIONS")

	docs.HandleFunc("/arrows", annotationHandler.AddArrow).Methods("POST", "OPTIONS")
	docs.HandleFunc("/arrows/{arrow}", annotationHandler.UpdateArrow).Methods("PATCH", "OPTIONS")
	docs.HandleFunc("/arrows/{arrow}", annotationHandler.DeleteArrow).Methods("DELETE", "OPTIONS")

	docs.HandleFunc("/notes", annotationHandler.AddNote).Methods("POST", "OPTIONS")
	docs.HandleFunc("/notes/{note}", annotationHandler.UpdateNote).Methods("PATCH", "OPTIONS")
	docs.HandleFunc("/notes/{note}", annotationHandler.DeleteNote).Methods("DELETE", "OPTIONS")

	docs.HandleFunc("/annotations", annotationHandler.Append).Methods("POST", "OPTIONS")
	docs.HandleFunc("/annotations/generate", annotationHandler.Generate).Methods("POST", "OPTIONS")

	docs.HandleFunc("/presets", mutationHandler.AddStylePreset).Methods("POST", "OPTIONS")
	docs.HandleFunc("/presets/reorder", mutationHandler.ReorderStylePreset).Methods("POST", "OPTIONS")
	docs.HandleFunc("/presets/{preset}", mutationHandler.UpdateStylePreset).Methods("PATCH", "OPTIONS")
	docs.HandleFunc("/presets/{preset}", mutationHandler.DeleteStylePreset).Methods("DELETE", "OPTIONS")

	docs.HandleFunc("/stamps", mutationHandler.AddStamp).Methods("POST", "OPTIONS")
	docs.HandleFunc("/stamps/{stamp}", mutationHandler.DeleteStamp).Methods("DELETE", "OPTIONS")

	docs.HandleFunc("/settings", mutationHandler.UpdateSettings).Methods("PATCH", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Server.Env).Str("backend", cfg.Remote.Backend).Msg("starting synoptic engine")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Flush every open session before taking the HTTP listener down so
	// in-flight edits reach the remote.
	sessions.CloseAll(ctx)
	drafts.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func buildRepository(cfg *config.Config) (repository.ProjectRepository, error) {
	switch cfg.Remote.Backend {
	case "couchdb":
		couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
			cfg.Remote.User,
			cfg.Remote.Password,
			cfg.Remote.Host,
			cfg.Remote.Port,
		)
		client, err := kivik.New("couch", couchURL)
		if err != nil {
			return nil, fmt.Errorf("connect to couchdb: %w", err)
		}
		exists, err := client.DBExists(context.Background(), cfg.Remote.Name)
		if err != nil {
			return nil, fmt.Errorf("check database existence: %w", err)
		}
		if !exists {
			if err := client.CreateDB(context.Background(), cfg.Remote.Name); err != nil {
				return nil, fmt.Errorf("create database: %w", err)
			}
		}
		return repository.NewCouchProjectRepository(client, cfg.Remote.Name), nil
	case "http":
		return repository.NewHTTPProjectRepository(cfg.Remote.BaseURL, cfg.Engine.OpTimeout), nil
	default:
		return nil, fmt.Errorf("unknown remote backend: %s", cfg.Remote.Backend)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"synoptic-engine"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"service":"synoptic-engine","version":"1.0.0"}`))
}
