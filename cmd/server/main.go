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

	"debugweek/internal/api"
	"debugweek/internal/app/service"
	"debugweek/internal/common/security"
	"debugweek/internal/domain/repository"
	"debugweek/internal/platform/config"
	"debugweek/internal/platform/database"
	"debugweek/internal/platform/redisconn"
	"debugweek/internal/runner"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	redisconn.Connect()
	defer redisconn.Close()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	weekRepo := repository.NewPgWeekRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)

	// 6. Initialize the Code Runner
	codeRunner, err := runner.New(
		config.AppConfig.PythonBin,
		config.AppConfig.ScratchDir,
		config.AppConfig.ExecTimeout,
		config.AppConfig.MaxConcurrentRuns,
	)
	if err != nil {
		log.Fatalf("Could not initialize code runner: %v", err)
	}

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	gradeService := service.NewGradeService(codeRunner)
	progressService := service.NewProgressService(progressRepo, submissionRepo, challengeRepo)
	submitLock := service.NewSubmitLock(redisconn.RDB, config.AppConfig.SubmitLockTTL)
	submissionService := service.NewSubmissionService(
		submissionRepo, challengeRepo, userRepo,
		gradeService, progressService, submitLock, database.DB,
	)
	weekService := service.NewWeekService(weekRepo, challengeRepo, submissionService, progressService)
	challengeService := service.NewChallengeService(challengeRepo, weekRepo, submissionService)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService, gradeService, submissionService,
		weekService, challengeService, progressService, userRepo,
	)

	server := &http.Server{
		Addr:    ":" + config.AppConfig.APIPort,
		Handler: router,
		// Grading holds the handler for up to the execution timeout, so the
		// write timeout must exceed it.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: config.AppConfig.ExecTimeout + 20*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
