package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/config"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/storage"

	accountHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/delivery/http"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	accountService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/service"

	auditHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/delivery/http"
	auditRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/repository"
	auditService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"

	commentHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/delivery/http"
	commentRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/repository"
	commentService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/service"

	feedHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/feed/delivery/http"
	feedRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/feed/repository"
	feedService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/feed/service"

	followHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/delivery/http"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	followService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/service"

	notiHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/delivery/http"
	notifRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/repository"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"

	postHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/delivery/http"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	postService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"

	reactionHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/delivery/http"
	reactionRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/repository"
	reactionService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/service"

	reportHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/delivery/http"
	reportRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/repository"
	reportService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/service"

	searchHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/search/delivery/http"
	searchService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/search/service"

	statHttp "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/delivery/http"
	statRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/repository"
	statService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the external services the server talks to. Everything
// but DB is optional.
type Dependencies struct {
	DB           *gorm.DB
	Redis        *redis.Client
	Meili        meilisearch.ServiceManager
	MediaStorage storage.MediaStorage
}

type Server struct {
	engine *gin.Engine
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	db := deps.DB
	redisClient := deps.Redis
	tx := database.NewTransactor(db)

	accountStore := accountRepo.NewAccountRepository(db)
	followStore := followRepo.NewFollowRepository(db)
	postStore := postRepo.NewPostRepository(db)
	commentStore := commentRepo.NewCommentRepository(db)
	reactionStore := reactionRepo.NewReactionRepository(db)
	reportStore := reportRepo.NewReportRepository(db)
	notifStore := notifRepo.NewNotificationRepository(db)
	auditStore := auditRepo.NewAuditRepository(db)
	feedStore := feedRepo.NewFeedRepository(db)
	statStore := statRepo.NewStatRepository(db)

	policy := visibility.NewPolicy(followStore)

	notificationSvc := notifService.NewNotificationService(notifStore, redisClient)
	auditSvc := auditService.NewAuditService(auditStore)
	searchSvc := searchService.NewSearchService(deps.Meili, accountStore)
	followSvc := followService.NewFollowService(followStore, accountStore, notificationSvc, tx)
	reactionSvc := reactionService.NewReactionService(reactionStore, postStore, policy, notificationSvc, redisClient, tx)
	postSvc := postService.NewPostService(postStore, accountStore, policy, auditSvc, notificationSvc, reactionSvc, deps.MediaStorage, tx, cfg.CloudinaryUploadFolder)
	commentSvc := commentService.NewCommentService(commentStore, postStore, accountStore, policy, notificationSvc, tx)
	feedSvc := feedService.NewFeedService(feedStore, followStore, accountStore, postSvc)
	reportSvc := reportService.NewReportService(reportStore, postStore, accountStore, policy, postSvc, auditSvc, notificationSvc, redisClient, tx, reportService.Options{
		Cooldown:    cfg.RateLimitReport,
		FanoutLimit: cfg.AdminFanoutLimit,
	})
	statSvc := statService.NewStatService(statStore)
	accountSvc := accountService.NewAccountService(
		accountStore, followStore, postStore, commentStore, reactionStore, notifStore,
		postSvc, auditSvc, searchSvc, reactionSvc, deps.MediaStorage, tx,
		accountService.Options{
			JWTSecret:    cfg.JWTSecret,
			TokenTTL:     cfg.JWTTTL,
			UploadFolder: cfg.CloudinaryUploadFolder,
		},
	)

	origins := allowedOrigins(cfg.AllowedOrigins)

	accountHandler := accountHttp.NewAccountHandler(accountSvc)
	auditHandler := auditHttp.NewAuditHandler(auditSvc)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)
	feedHandler := feedHttp.NewFeedHandler(feedSvc)
	followHandler := followHttp.NewFollowHandler(followSvc)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, checkOrigin(origins))
	postHandler := postHttp.NewPostHandler(postSvc)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)
	reportHandler := reportHttp.NewReportHandler(reportSvc)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)
	statHandler := statHttp.NewStatHandler(statSvc)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, origins)

	router.Use(middleware.RequestID())
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	router.GET("/healthz", healthCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(accountStore, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", accountHandler.Register)
		auth.POST("/login", accountHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/accounts", accountHandler.ListAccounts)
			adminGroup.PATCH("/accounts/:id/role", accountHandler.SetRole)
			adminGroup.PATCH("/accounts/:id/active", accountHandler.SetActive)
			adminGroup.DELETE("/accounts/:id", accountHandler.DeleteAccount)
			adminGroup.GET("/reports", reportHandler.ListReports)
			adminGroup.GET("/reports/:id", reportHandler.GetReport)
			adminGroup.POST("/reports/:id/review", reportHandler.ReviewReport)
			adminGroup.GET("/audit", auditHandler.List)
			adminGroup.GET("/stats", statHandler.GetOverview)
		}

		// Account routes
		protected.GET("/me", accountHandler.Me)
		protected.PUT("/me", accountHandler.UpdateProfile)
		protected.DELETE("/me", accountHandler.DeleteMe)
		protected.GET("/profiles/:username", accountHandler.GetProfile)
		protected.GET("/search/accounts", searchHandler.SearchAccounts)

		// Follow graph
		protected.POST("/accounts/:id/follow", followHandler.Follow)
		protected.DELETE("/accounts/:id/follow", followHandler.Unfollow)
		protected.GET("/accounts/:id/followers", followHandler.ListFollowers)
		protected.GET("/accounts/:id/following", followHandler.ListFollowing)
		protected.GET("/accounts/:id/posts", feedHandler.GetAuthorPosts)

		// Feed
		protected.GET("/feed", feedHandler.GetFeed)
		protected.GET("/discover", feedHandler.GetPublicPosts)

		// Post routes
		protected.POST("/posts", postHandler.CreatePost)
		protected.GET("/posts/:post_id", postHandler.GetPostByID)
		protected.PUT("/posts/:post_id", postHandler.UpdatePost)
		protected.DELETE("/posts/:post_id", postHandler.DeletePost)
		protected.POST("/posts/:post_id/comments", commentHandler.CreateComment)
		protected.GET("/posts/:post_id/comments", commentHandler.ListComments)
		protected.DELETE("/comments/:comment_id", commentHandler.DeleteComment)
		protected.POST("/posts/:post_id/reactions", reactionHandler.ToggleReaction)
		protected.GET("/posts/:post_id/reactions", reactionHandler.GetReactions)
		protected.POST("/posts/:post_id/reports", reportHandler.CreateReport)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{engine: router}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

// checkOrigin admits WebSocket upgrades from the CORS origins. Clients that
// send no Origin header are not browsers and are let through.
func checkOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range origins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
