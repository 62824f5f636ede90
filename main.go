package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/pedrolhs/egressolink/config"
	"github.com/pedrolhs/egressolink/database"
	"github.com/pedrolhs/egressolink/handlers"
	"github.com/pedrolhs/egressolink/models"
	"github.com/pedrolhs/egressolink/repository"
	"github.com/pedrolhs/egressolink/services"
	"github.com/pedrolhs/egressolink/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dbDir := filepath.Dir(cfg.DatabasePath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dbDir, err)
		}
	}

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	defer db.Close()

	gormDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize GORM database: %v", err)
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate database models: %v", err)
	}

	personRepo := repository.NewPersonRepository(gormDB)
	runRepo := repository.NewRunRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)

	if err := bootstrapAdminUser(userRepo, cfg); err != nil {
		log.Fatalf("FATAL: Failed to bootstrap admin user: %v", err)
	}

	pipelineService := services.NewPipelineService(cfg, db, personRepo)

	log.Printf("Initializing pipeline worker pool (Workers: %d, Queue Size: %d)...", cfg.NumPipelineWorkers, cfg.PipelineQueueSize)
	pipelineProcessor := workers.NewPipelineProcessor(pipelineService, runRepo, cfg.PipelineQueueSize, cfg.NumPipelineWorkers)
	defer pipelineProcessor.Stop()

	if cfg.PipelineInterval > 0 {
		scheduler := workers.NewScheduler(pipelineProcessor, cfg.PipelineInterval)
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		log.Println("Scheduled pipeline runs disabled (PIPELINE_INTERVAL not set); runs must be triggered via the API")
	}

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Alumni roster: %s", cfg.AlumniCSVFile)
	log.Printf("Registry data dir: %s", cfg.RegistryDataDir)
	log.Printf("Partner index mode: %s", cfg.PartnerIndexMode)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	personHandler := handlers.NewPersonHandler(personRepo)
	runHandler := handlers.NewRunHandler(pipelineProcessor, runRepo)
	exportHandler := handlers.NewExportHandler(personRepo)

	authed := func(h http.HandlerFunc) http.Handler {
		return handlers.AuthMiddleware(userRepo, []byte(cfg.JWTSecret), h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Route("/people", func(r chi.Router) {
			r.Method("GET", "/", authed(personHandler.ListPeople))
			r.Method("GET", "/{personID}", authed(personHandler.GetPerson))
		})

		r.Route("/runs", func(r chi.Router) {
			r.Method("POST", "/", authed(runHandler.TriggerRun))
			r.Method("GET", "/", authed(runHandler.ListRuns))
			r.Method("GET", "/{runUUID}", authed(runHandler.GetRun))
		})

		r.Method("GET", "/export/people.csv", authed(exportHandler.ExportCSV))
	})

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// bootstrapAdminUser creates the initial admin account when the users table
// is empty and credentials were provided via ADMIN_USERNAME/ADMIN_PASSWORD.
func bootstrapAdminUser(userRepo repository.UserRepositoryInterface, cfg config.Config) error {
	count, err := userRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Println("Warning: No users exist and ADMIN_USERNAME/ADMIN_PASSWORD are unset; API endpoints will be unreachable")
		return nil
	}

	user := &models.User{Username: cfg.AdminUsername}
	if err := user.SetPassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Printf("Created initial admin user '%s'", cfg.AdminUsername)
	return nil
}
