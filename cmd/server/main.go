package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vivafit/wellness-app/internal/api"
	"vivafit/wellness-app/internal/config"
	"vivafit/wellness-app/internal/repository/mongo"
	"vivafit/wellness-app/internal/service"
	"vivafit/wellness-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Wellness App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	// The unique indexes carry the one-per-(plan,date) and
	// one-per-(user,achievement) invariants; create them before serving.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("user_plans"))
		mongo.EnsureCheckpointIndexes(ctx, appDB.Collection("daily_checkpoints"))
		mongo.EnsureExerciseCheckpointIndexes(ctx, appDB.Collection("exercise_checkpoints"))
		mongo.EnsureMealCheckpointIndexes(ctx, appDB.Collection("meal_checkpoints"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("workout_sessions"))
		mongo.EnsureNutritionGoalIndexes(ctx, appDB.Collection("daily_nutrition_goals"))
		mongo.EnsureAchievementIndexes(ctx, appDB.Collection("unlocked_achievements"))
		mongo.EnsureStatsIndexes(ctx, appDB.Collection("user_stats"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	planRepo := mongo.NewMongoPlanRepository(appDB)
	checkpointRepo := mongo.NewMongoCheckpointRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseCheckpointRepository(appDB)
	mealRepo := mongo.NewMongoMealCheckpointRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	goalRepo := mongo.NewMongoNutritionGoalRepository(appDB)
	achievementRepo := mongo.NewMongoAchievementRepository(appDB)
	levelRepo := mongo.NewMongoLevelRepository(appDB)
	statsRepo := mongo.NewMongoStatsRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	planService := service.NewPlanService(planRepo, checkpointRepo, exerciseRepo, mealRepo, sessionRepo)
	checkpointService := service.NewCheckpointService(planRepo, checkpointRepo, exerciseRepo, mealRepo, sessionRepo, goalRepo, statsRepo, fileStorage, cfg.Points.DailyCheckpoint)
	progressService := service.NewProgressService(checkpointRepo, exerciseRepo, mealRepo, sessionRepo)
	achievementService := service.NewAchievementService(achievementRepo, statsRepo)
	levelService := service.NewLevelService(levelRepo, statsRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, planService, checkpointService, progressService, achievementService, levelService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
