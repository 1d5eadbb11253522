package main

import (
	"flag"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/banterhq/banter/internal/auth"
	"github.com/banterhq/banter/internal/config"
	"github.com/banterhq/banter/internal/handlers"
	"github.com/banterhq/banter/internal/middleware"
	"github.com/banterhq/banter/internal/store"
	"github.com/banterhq/banter/internal/store/memstore"
	"github.com/banterhq/banter/internal/store/sqlstore"
	"github.com/banterhq/banter/internal/ws"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "http service address")
	flag.Parse()

	logger := newLogger(cfg.AppEnv)
	defer logger.Sync()

	auth.SetSecret(cfg.CookieSecret)

	// Storage backend: volatile memory by default, sql for deployments that
	// want history to survive restarts.
	var st store.Store
	switch cfg.DBDriver {
	case "memory":
		st = memstore.New()
	default:
		sqlSt, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			logger.Fatal("open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
		}
		defer sqlSt.Close()
		st = sqlSt
	}

	relay := ws.NewRelay(st, st, logger.Named("relay"))
	go relay.Run()

	authHandler := &handlers.AuthHandler{Store: st}
	snapshot := &handlers.SnapshotHandler{Chats: st, Messages: st}

	r := mux.NewRouter()
	r.Use(middleware.Logging(logger.Named("http")))

	// API Endpoints
	r.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.Handle("/contacts/search", middleware.AuthMiddleware(http.HandlerFunc(authHandler.SearchContacts))).Methods("GET")
	r.HandleFunc("/chats", snapshot.GetChats).Methods("GET")
	r.HandleFunc("/messages", snapshot.GetMessages).Methods("GET")

	// WebSocket Endpoint
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWs(relay, w, req)
	})

	// Serve the chat UI
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, "static/index.html")
	})

	// Serve static files with cache-busting headers for development
	r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, ".css") || strings.HasSuffix(req.URL.Path, ".js") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		http.FileServer(http.Dir("static")).ServeHTTP(w, req)
	}))

	logger.Info("starting server", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(appEnv string) *zap.Logger {
	if appEnv == "production" {
		logger, _ := zap.NewProduction()
		return logger
	}
	logger, _ := zap.NewDevelopment()
	return logger
}
