package main

import (
	"log"
	"net/http"
	"os"
	"progress-service/internal/db"
	"progress-service/internal/event"
	"progress-service/internal/handlers"
	"progress-service/internal/repository"
	"progress-service/internal/rewards"
	"progress-service/internal/service"
	"progress-service/internal/settings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(mongoURI)

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "progress_service"
	}
	database := db.Client.Database(dbName)

	// Redis settings cache; optional, the settings client falls back to
	// Mongo reads when no address is configured.
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	} else {
		log.Println("REDIS_ADDR not set, settings cache disabled")
	}

	// RabbitMQ event publisher and reward ledger
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.EventPublisher
	var ledger rewards.Ledger = rewards.NopLedger{}
	if rabbitURL != "" && eventExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		ledger = rewards.NewAMQPLedger(publisher)
	} else {
		log.Println("RabbitMQ not configured, events and reward grants will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://evolvia.phrimp.io.vn"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Repositories
	quizRepo := repository.NewQuizRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	progressRepo := repository.NewProgressRepository(database)
	dailyRepo := repository.NewDailyRepository(database)
	contentRepo := repository.NewContentRepository(database)

	settingsClient := settings.NewClient(rdb, database)

	// Services
	attemptService := service.NewAttemptService(attemptRepo, quizRepo, ledger, settingsClient)
	accessService := service.NewAccessService(contentRepo, progressRepo, quizRepo, attemptRepo, dailyRepo, settingsClient)
	progressService := service.NewProgressService(progressRepo, dailyRepo, contentRepo, quizRepo, accessService, ledger, settingsClient)

	// Handlers
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	progressHandler := handlers.NewProgressHandler(progressService)
	accessHandler := handlers.NewAccessHandler(accessService, settingsClient)
	quizHandler := handlers.NewQuizHandler(quizRepo)

	// Public routes - sanitized quiz definitions
	publicQuiz := r.Group("/public/progress/quiz")
	{
		publicQuiz.GET("/:quizId", func(c *gin.Context) {
			quizHandler.GetQuiz(c)
			if publisher != nil {
				publisher.Publish("quiz.viewed", gin.H{"quiz_id": c.Param("quizId")})
			}
		})
	}

	setupProgressRoutes(r, progressHandler, accessHandler, publisher)
	setupAttemptRoutes(r, attemptHandler, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "6680"
	}
	r.Run(":" + port)
}

func requireUserID(c *gin.Context) {
	if c.GetHeader("X-User-ID") == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
			"code":  "MISSING_USER_ID",
		})
		c.Abort()
		return
	}
	c.Next()
}

func setupProgressRoutes(r *gin.Engine, progressHandler *handlers.ProgressHandler, accessHandler *handlers.AccessHandler, publisher *event.EventPublisher) {
	protected := r.Group("/protected/progress")
	protected.Use(requireUserID)
	{
		// === ENROLLMENT AND COMPLETION ===

		protected.POST("/enroll/:courseId", func(c *gin.Context) {
			progressHandler.Enroll(c)
			if publisher != nil {
				publisher.Publish("progress.enrolled", gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"course_id": c.Param("courseId"),
				})
			}
		})

		protected.POST("/lesson/:lessonId/complete", func(c *gin.Context) {
			progressHandler.CompleteLesson(c)
			if publisher != nil {
				publisher.Publish("progress.lesson.completed", gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"lesson_id": c.Param("lessonId"),
				})
			}
		})

		// === READ SURFACES ===

		protected.GET("/", progressHandler.GetProgress)
		protected.GET("/course/:courseId", progressHandler.GetCourseProgress)
		protected.GET("/next/:lessonId", progressHandler.GetNextContent)

		// Derived-field repair from the lesson-status ground truth
		protected.POST("/recalculate", func(c *gin.Context) {
			progressHandler.Recalculate(c)
			if publisher != nil {
				publisher.Publish("progress.recalculated", gin.H{
					"user_id": c.GetHeader("X-User-ID"),
				})
			}
		})

		// === ACCESS GATE ===

		protected.GET("/access/theme/:themeId", accessHandler.CheckThemeAccess)
		protected.GET("/access/lesson/:lessonId", accessHandler.CheckLessonAccess)
		protected.GET("/daily-limit", accessHandler.GetDailyLimit)

		// === ADMIN ===

		protected.PUT("/settings/daily-limit", func(c *gin.Context) {
			accessHandler.UpdateDailyLimit(c)
			if publisher != nil {
				publisher.Publish("progress.settings.daily_limit_updated", gin.H{
					"user_id": c.GetHeader("X-User-ID"),
				})
			}
		})
	}
}

func setupAttemptRoutes(r *gin.Engine, attemptHandler *handlers.AttemptHandler, publisher *event.EventPublisher) {
	protected := r.Group("/protected/progress")
	protected.Use(requireUserID)
	{
		// === ATTEMPT LIFECYCLE ===

		protected.POST("/quiz/:quizId/attempt", func(c *gin.Context) {
			attemptHandler.StartAttempt(c)
			if publisher != nil {
				publisher.Publish("quiz.attempt.started", gin.H{
					"user_id": c.GetHeader("X-User-ID"),
					"quiz_id": c.Param("quizId"),
				})
			}
		})

		protected.GET("/quiz/:quizId/eligibility", attemptHandler.GetEligibility)

		protected.PUT("/attempt/:id/answers", attemptHandler.SaveAnswers)

		protected.POST("/attempt/:id/submit", func(c *gin.Context) {
			attemptHandler.SubmitAttempt(c)
			if publisher != nil {
				publisher.Publish("quiz.attempt.submitted", gin.H{
					"user_id":    c.GetHeader("X-User-ID"),
					"attempt_id": c.Param("id"),
				})
			}
		})

		protected.POST("/attempt/:id/abandon", func(c *gin.Context) {
			attemptHandler.AbandonAttempt(c)
			if publisher != nil {
				publisher.Publish("quiz.attempt.abandoned", gin.H{
					"user_id":    c.GetHeader("X-User-ID"),
					"attempt_id": c.Param("id"),
				})
			}
		})

		protected.GET("/attempt/:id", attemptHandler.GetAttempt)
		protected.GET("/attempts", attemptHandler.ListAttempts)
	}
}
