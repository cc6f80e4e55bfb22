package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/handler"
	"github.com/stemsi/mcq-engine/internal/middleware"
	"github.com/stemsi/mcq-engine/internal/response"
	"github.com/stemsi/mcq-engine/internal/service"
)

// catalogMaxAge is the browser cache lifetime of exam/topic listings.
const catalogMaxAge = 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Question    *handler.QuestionHandler
	Quiz        *handler.QuizHandler
	Leaderboard *handler.LeaderboardHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler

	// AnswerLimiter throttles answer submissions. The WS handler holds
	// the same instance.
	AnswerLimiter *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Catalog (Public) ───────────────────────────────────────────
	catalog := router.Group("/api/v1/exams")
	catalog.Use(middleware.CacheControl(catalogMaxAge))
	{
		catalog.GET("", handlers.Question.ListExams)
		catalog.GET("/:exam/topics", handlers.Question.ListTopics)
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	answerLimiter := handlers.AnswerLimiter
	if answerLimiter == nil {
		answerLimiter = middleware.NewRateLimiter(cfg.AnswerRatePerMinute, time.Minute)
	}

	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireUserJWT(authService), middleware.NoStore())
	{
		userAPI.GET("/auth/me", handlers.Auth.GetProfile)

		quiz := userAPI.Group("/quiz")
		{
			quiz.GET("", handlers.Quiz.GetSession)
			quiz.POST("/start", handlers.Quiz.Start)
			quiz.POST("/exam", handlers.Quiz.SelectExam)
			quiz.POST("/topic", handlers.Quiz.SelectTopic)
			quiz.POST("/answer", answerLimiter.Middleware(), handlers.Quiz.SubmitAnswer)
			quiz.POST("/reset", handlers.Quiz.Reset)
			quiz.GET("/result", handlers.Quiz.GetResult)

			quiz.POST("/review", handlers.Quiz.EnterReview)
			quiz.DELETE("/review", handlers.Quiz.ExitReview)
			quiz.GET("/review/current", handlers.Quiz.ReviewCurrent)
			quiz.POST("/review/next", handlers.Quiz.ReviewNext)
			quiz.POST("/review/prev", handlers.Quiz.ReviewPrev)
		}

		userAPI.GET("/leaderboard", handlers.Leaderboard.TopN)
		userAPI.GET("/scores/me", handlers.Leaderboard.MyScores)

		userAPI.GET("/system/metrics", handlers.System.Snapshot)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(authService))
	{
		ws.GET("/quiz", handlers.WS.QuizStream)
	}

	return router
}
