package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/metaspex/interviews/config"
	"github.com/metaspex/interviews/internal/auth"
	"github.com/metaspex/interviews/internal/cache"
	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/repository"
	"github.com/metaspex/interviews/internal/service"
	"github.com/metaspex/interviews/internal/transport/rest"
	"github.com/metaspex/interviews/internal/transport/ws"
)

// @title Interview Engine API
// @version 1.0
// @description Questionnaire compiler and interview interpreter
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()
	cfg := config.Load()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("interviews")
	store := repository.NewStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to ensure indexes:", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Expression host and compiler.
	host := expr.NewGojaHost()

	// Repositories (templates first: the questionnaire compiler resolves
	// template references through it).
	templateRepo := repository.NewTemplateRepository(store, compiler.New(host, nil))
	questionnaireRepo := repository.NewQuestionnaireRepository(
		store,
		compiler.New(host, nil),
		templateRepo,
		cache.NewQuestionnaireCache(rdb),
		cache.NewQuestionnaireLocalizationCache(rdb),
	)
	campaignRepo := repository.NewCampaignRepository(store, questionnaireRepo, cache.NewCampaignCache(rdb))
	interviewRepo := repository.NewInterviewRepository(store, campaignRepo)

	// Auth and WebSocket hub.
	authSvc := auth.New()
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Services.
	templateSvc := service.NewTemplateService(templateRepo)
	questionnaireSvc := service.NewQuestionnaireService(questionnaireRepo)
	campaignSvc := service.NewCampaignService(campaignRepo, authSvc)
	interviewSvc := service.NewInterviewService(interviewRepo, campaignRepo, questionnaireRepo, templateRepo, host, wsHub)

	container := &rest.Container{
		AuthService:          authSvc,
		TemplateService:      templateSvc,
		QuestionnaireService: questionnaireSvc,
		CampaignService:      campaignSvc,
		InterviewService:     interviewSvc,
		WSHub:                wsHub,
	}

	router := rest.NewRouter(container)

	port := cfg.HTTPPort
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/questionnaires")
		log.Println("  POST /v1/questionnaires/{id}/localizations")
		log.Println("  POST /v1/template-categories")
		log.Println("  POST /v1/template-categories/{id}/questions")
		log.Println("  POST /v1/template-questions/{id}/localizations")
		log.Println("  POST /v1/campaigns")
		log.Println("  POST /v1/campaigns/{id}/interviewer-tokens")
		log.Println("  POST /v1/campaigns/{id}/interviews")
		log.Println("  GET  /v1/interviews/{id}")
		log.Println("  POST /v1/interviews/{id}/answers")
		log.Println("  PUT  /v1/interviews/{id}/answers/{pos}")
		log.Println("  WS   /v1/campaigns/{id}/watch")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
