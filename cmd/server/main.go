package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediafeed-server/internal/config"
	"mediafeed-server/internal/handler"
	"mediafeed-server/internal/middleware"
	"mediafeed-server/internal/repository"
	"mediafeed-server/internal/service"
	"mediafeed-server/internal/storage"
	"mediafeed-server/internal/websocket"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URL))
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Failed to disconnect from MongoDB: %v", err)
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	err = client.Ping(ctx, readpref.Primary())
	cancel()
	if err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	db := client.Database(cfg.Database.Name)

	if err := repository.EnsureUserIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	mediaStore, err := storage.NewMediaStore(cfg.Media)
	if err != nil {
		log.Fatalf("Failed to create media store: %v", err)
	}
	if err := mediaStore.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("Failed to ensure media bucket: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	authService := service.NewAuthService(userRepo, cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	userService := service.NewUserService(userRepo, wsManager)
	postService := service.NewPostService(postRepo, commentRepo, userRepo, wsManager, mediaStore)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService)
	mediaHandler := handler.NewMediaHandler(mediaStore)
	wsHandler := handler.NewWebSocketHandler(wsManager, authService)

	r := mux.NewRouter()

	r.Use(middleware.IdentityMiddleware(cfg.JWT.AccessSecret))
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	// Authorization is decided per operation in the service layer; routes
	// stay open so anonymous requests fail uniformly with 401.
	api.HandleFunc("/users/me", userHandler.GetMe).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/me", userHandler.UpdateMe).Methods("PUT", "OPTIONS")
	api.HandleFunc("/users/me/password", userHandler.ChangePassword).Methods("PUT", "OPTIONS")
	api.HandleFunc("/users/search", userHandler.Search).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/suggestions", userHandler.Suggestions).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/{id}/follow", userHandler.Follow).Methods("POST", "OPTIONS")
	api.HandleFunc("/users/{id}/posts", postHandler.UserPosts).Methods("GET", "OPTIONS")

	api.HandleFunc("/posts", postHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/posts", postHandler.Feed).Methods("GET", "OPTIONS")
	api.HandleFunc("/posts/{id}", postHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/posts/{id}", postHandler.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/posts/{id}/like", postHandler.Like).Methods("POST", "OPTIONS")
	api.HandleFunc("/posts/{id}/comments", postHandler.Comment).Methods("POST", "OPTIONS")

	api.HandleFunc("/media", mediaHandler.Upload).Methods("POST", "OPTIONS")
	api.HandleFunc("/media/{key}", mediaHandler.Serve).Methods("GET", "OPTIONS")

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
		log.Printf("Starting MediaFeed API on %s (env: %s)", addr, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"mediafeed-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"MediaFeed API","version":"1.0.0","endpoints":{"/api/v1/auth/register":"POST","/api/v1/auth/login":"POST","/api/v1/posts":"GET","/ws":"GET"}}`))
}
