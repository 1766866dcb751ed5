package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/opensourcefinder/server/internal/auth"
	"github.com/opensourcefinder/server/internal/config"
	"github.com/opensourcefinder/server/internal/database"
	"github.com/opensourcefinder/server/internal/gateway"
	"github.com/opensourcefinder/server/internal/keywords"
	"github.com/opensourcefinder/server/internal/logging"
	postgresrepo "github.com/opensourcefinder/server/internal/repository/postgres"
	"github.com/opensourcefinder/server/internal/service"
	"github.com/opensourcefinder/server/internal/transport/http/handlers"
	"github.com/opensourcefinder/server/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	logging.Init()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to database")

	// External services
	githubGateway := gateway.NewGitHub(cfg.GitHubToken)
	keywordClient := keywords.New(cfg.OllamaBaseURL, cfg.OllamaModel)
	oauthProvider := auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	projectRepo := postgresrepo.NewProjectRepo(pool)
	inquiryRepo := postgresrepo.NewInquiryRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	projectService := service.NewProjectService(projectRepo, userRepo, githubGateway, keywordClient)
	engagementService := service.NewEngagementService(projectRepo, userRepo)
	userService := service.NewUserService(userRepo, projectRepo)
	inquiryService := service.NewInquiryService(inquiryRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, oauthProvider, cfg.AllowedOrigin)
	projectHandler := handlers.NewProjectHandler(projectService, engagementService)
	userHandler := handlers.NewUserHandler(userService, engagementService)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService)
	keywordsHandler := handlers.NewKeywordsHandler(keywordClient)

	// Auth middleware
	authed := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /auth/github/login", authHandler.GitHubLogin)
	mux.HandleFunc("GET /auth/github/callback", authHandler.GitHubCallback)
	mux.HandleFunc("GET /api/v1/projects", projectHandler.List)
	mux.HandleFunc("GET /api/v1/projects/{id}", projectHandler.Get)
	mux.HandleFunc("POST /api/v1/keywords", keywordsHandler.Suggest)

	// Protected - Projects
	mux.Handle("POST /api/v1/projects", authed(http.HandlerFunc(projectHandler.Create)))
	mux.Handle("POST /api/v1/projects/preview", authed(http.HandlerFunc(projectHandler.Preview)))
	mux.Handle("PATCH /api/v1/projects/{id}", authed(http.HandlerFunc(projectHandler.Edit)))
	mux.Handle("DELETE /api/v1/projects/{owner}/{name}", authed(http.HandlerFunc(projectHandler.Delete)))
	mux.Handle("PATCH /api/v1/projects/{id}/like", authed(http.HandlerFunc(projectHandler.ToggleLike)))

	// Protected - Profile
	mux.Handle("GET /api/v1/users/me", authed(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PATCH /api/v1/users/me", authed(http.HandlerFunc(userHandler.EditProfile)))
	mux.Handle("DELETE /api/v1/users/me", authed(http.HandlerFunc(userHandler.DeleteAccount)))
	mux.Handle("GET /api/v1/users/me/stats", authed(http.HandlerFunc(userHandler.Stats)))
	mux.Handle("GET /api/v1/users/me/bookmarks", authed(http.HandlerFunc(userHandler.Bookmarks)))
	mux.Handle("PATCH /api/v1/users/me/bookmarks/{projectId}", authed(http.HandlerFunc(userHandler.ToggleBookmark)))
	mux.Handle("PATCH /api/v1/users/me/projects/refresh", authed(http.HandlerFunc(projectHandler.RefreshMine)))

	// Protected - Inquiries
	mux.Handle("POST /api/v1/inquiries", authed(http.HandlerFunc(inquiryHandler.Create)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(cfg.AllowedOrigin)(mux)))
}
