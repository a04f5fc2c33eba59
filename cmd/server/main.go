package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teacherhub/quiz-service/internal/cache"
	"github.com/teacherhub/quiz-service/internal/config"
	"github.com/teacherhub/quiz-service/internal/handlers"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories/postgres"
	"github.com/teacherhub/quiz-service/internal/services"
	"github.com/teacherhub/quiz-service/internal/utils"
	"github.com/teacherhub/quiz-service/internal/validator"
	"github.com/teacherhub/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseShare{},
		&models.Student{},
		&models.CourseStudent{},
		&models.Quiz{},
		&models.QuizAnswer{},
		&models.FeedbackImport{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	cacheService := cache.NewRedisCache(redisClient, slogLogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	handlers.InitAuth(cfg.Casdoor)

	repo := postgres.New(db)
	v := validator.New()

	courseService := services.NewCourseService(repo, slogLogger, v, publisher)
	quizService := services.NewQuizService(repo, slogLogger, v, publisher)
	analyticsService := services.NewAnalyticsService(repo, slogLogger, cacheService)
	resultsService := services.NewResultsService(repo, slogLogger, publisher, analyticsService)
	feedbackService := services.NewFeedbackService(repo, slogLogger, publisher, analyticsService)
	rosterService := services.NewRosterImportService(repo, slogLogger, publisher, analyticsService)
	dataService := services.NewQuizDataService(repo, resultsService, feedbackService, slogLogger)
	answerImportService := services.NewAnswerImportService(repo, resultsService, slogLogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	handlerManager := handlers.NewHandlerManager(
		repo,
		courseService,
		quizService,
		resultsService,
		feedbackService,
		analyticsService,
		rosterService,
		dataService,
		answerImportService,
		logger,
	)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server exited")
}
