package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stridepath/running-app/internal/api"
	"stridepath/running-app/internal/config"
	"stridepath/running-app/internal/engine"
	mongorepo "stridepath/running-app/internal/repository/mongo"
	"stridepath/running-app/internal/seed"
	"stridepath/running-app/internal/service"
	"stridepath/running-app/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "running-app",
		Short:         "Adaptive running training progression service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newSeedCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServer(*configPath)
		},
	}
}

func newSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the phase catalog and workout template pool",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSeed(*configPath)
		},
	}
}

func runServer(configPath string) error {
	log := logger.New()
	log.Info("Starting running-app server...")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Errorw("could not load config", "error", err)
		return err
	}

	dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Errorw("could not connect to MongoDB", "error", err)
		return err
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongorepo.DisconnectDB(dbClient); err != nil {
			log.Errorw("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// Index creation runs in the background so a slow replica set does not
	// block startup.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongorepo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongorepo.EnsureProgressIndexes(ctx, appDB.Collection("user_progress"))
		mongorepo.EnsurePhaseIndexes(ctx, appDB.Collection("training_phases"))
		mongorepo.EnsureTemplateIndexes(ctx, appDB.Collection("workout_templates"))
		mongorepo.EnsurePlanIndexes(ctx, appDB.Collection("adaptive_plans"))
		log.Info("Index creation process completed.")
	}()

	// Repositories.
	userRepo := mongorepo.NewMongoUserRepository(appDB)
	progressRepo := mongorepo.NewMongoProgressRepository(appDB)
	phaseRepo := mongorepo.NewMongoPhaseRepository(appDB)
	templateRepo := mongorepo.NewMongoTemplateRepository(appDB)
	planRepo := mongorepo.NewMongoPlanRepository(appDB)

	// Engine: injected tables and the static achievement catalog.
	tables := engine.DefaultTables()
	xp := engine.NewXPCalculator(tables)
	evaluator := engine.NewAchievementEvaluator(engine.DefaultAchievements(), log)
	machine := engine.NewPhaseMachine(log)
	assessor := engine.NewAssessor(tables)
	generator := engine.NewScheduleGenerator(tables, xp)

	// Services.
	progressionService := service.NewProgressionService(
		userRepo, progressRepo, phaseRepo, xp, evaluator, machine,
		cfg.Engine.ProgressWriteRetries, log,
	)
	planService := service.NewPlanService(
		userRepo, progressRepo, phaseRepo, templateRepo, planRepo,
		progressionService, assessor, generator, log,
	)

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, planService, progressionService)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Infow("server starting", "address", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("listen and serve failed", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Info("Server exiting.")
	return nil
}

func runSeed(configPath string) error {
	log := logger.New()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Errorw("could not load config", "error", err)
		return err
	}

	dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Errorw("could not connect to MongoDB", "error", err)
		return err
	}
	defer func() { _ = mongorepo.DisconnectDB(dbClient) }()
	appDB := dbClient.Database(cfg.Database.Name)

	phaseRepo := mongorepo.NewMongoPhaseRepository(appDB)
	templateRepo := mongorepo.NewMongoTemplateRepository(appDB)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seed.Run(ctx, phaseRepo, templateRepo, log); err != nil {
		log.Errorw("seed failed", "error", err)
		return err
	}
	log.Info("Seed completed.")
	return nil
}
