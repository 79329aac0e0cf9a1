package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/foodgram-v2/backend/config"
	"github.com/pageza/foodgram-v2/backend/internal/api"
	"github.com/pageza/foodgram-v2/backend/internal/database"
	"github.com/pageza/foodgram-v2/backend/internal/router"
	"github.com/pageza/foodgram-v2/backend/internal/server"
	"github.com/pageza/foodgram-v2/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// The reference-data cache is an optimization; the API works without it.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache: %v", err)
		redisClient = nil
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to configure S3: %v", err)
	}
	if s3Config == nil {
		log.Printf("S3 bucket not configured, image upload disabled")
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	subscriptionService := service.NewSubscriptionService(db)
	selectionService := service.NewSelectionService(db)
	recipeService := service.NewRecipeService(db)
	tagService := service.NewTagService(db, redisClient)
	ingredientService := service.NewIngredientService(db, redisClient)
	shoppingListService := service.NewShoppingListService(db)
	documentService := service.NewDocumentService(cfg.PDFFontPath)
	imageService := service.NewImageService(s3Config)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService, subscriptionService),
		api.NewRecipeHandler(recipeService, selectionService, subscriptionService, imageService),
		api.NewTagHandler(tagService),
		api.NewIngredientHandler(ingredientService),
		api.NewSubscriptionHandler(subscriptionService),
		api.NewShoppingCartHandler(shoppingListService, documentService),
		authService,
		cfg.AllowedOrigins,
	)

	srv := server.New(cfg, engine)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
