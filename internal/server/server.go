package server

import (
	"log"
	"strings"
	"time"

	"forumcore/internal/cache"
	"forumcore/internal/config"
	"forumcore/internal/decorator"
	"forumcore/internal/event"
	"forumcore/internal/identity"
	"forumcore/internal/middleware"
	"forumcore/pkg/sanitizer"

	categoryHttp "forumcore/internal/modules/category/delivery/http"
	categoryRepo "forumcore/internal/modules/category/repository"
	categoryService "forumcore/internal/modules/category/service"

	likeHttp "forumcore/internal/modules/like/delivery/http"
	likeRepo "forumcore/internal/modules/like/repository"
	likeService "forumcore/internal/modules/like/service"

	postHttp "forumcore/internal/modules/post/delivery/http"
	postRepo "forumcore/internal/modules/post/repository"
	postService "forumcore/internal/modules/post/service"

	searchHttp "forumcore/internal/modules/search/delivery/http"
	searchRepo "forumcore/internal/modules/search/repository"
	searchService "forumcore/internal/modules/search/service"

	threadHttp "forumcore/internal/modules/thread/delivery/http"
	threadRepo "forumcore/internal/modules/thread/repository"
	threadService "forumcore/internal/modules/thread/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	// Cache backend. Without redis the in-process cache keeps the same
	// fetch/invalidate contract.
	var queryCache cache.QueryCache
	if redisClient != nil {
		queryCache = cache.NewRedisCache(redisClient)
	} else {
		queryCache = cache.NewMemoryCache()
	}

	provider := identity.NewHTTPProvider(cfg.IdentityAPIURL)

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	meiliSvc := searchService.NewMeiliService(meiliClient)

	clean := sanitizer.New()

	events := event.NewDispatcher()
	events.Subscribe(func(e event.Event) {
		log.Printf("event %s", e.Name())
	})

	threadDecorator := decorator.NewThreadDecorator(provider, cfg.BaseURL, cfg.DefaultAvatarURL)
	postDecorator := decorator.NewPostDecorator(db, provider, cfg.Brand, cfg.DefaultAvatarURL)
	categoryDecorator := decorator.NewCategoryDecorator(db, provider, cfg.DefaultAvatarURL)

	categoryRepository := categoryRepo.NewCategoryRepository(db, queryCache)
	categorySvc := categoryService.NewCategoryService(categoryRepository, categoryDecorator, queryCache)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	threadRepository := threadRepo.NewThreadRepository(db, queryCache)
	postRepository := postRepo.NewPostRepository(db, queryCache)

	searchIndexRepository := searchRepo.NewSearchIndexRepository(db)
	indexerSvc := searchService.NewIndexerService(threadRepository, searchIndexRepository, threadDecorator)
	searchHandler := searchHttp.NewSearchHandler(indexerSvc)

	threadSvc := threadService.NewThreadService(threadRepository, categoryRepository, postRepository, threadDecorator, clean, queryCache, events, meiliSvc, indexerSvc, cfg.PageSize)
	threadHandler := threadHttp.NewThreadHandler(threadSvc)

	postSvc := postService.NewPostService(postRepository, threadRepository, postDecorator, clean, queryCache, cfg.PageSize)
	postHandler := postHttp.NewPostHandler(postSvc)

	likeRepository := likeRepo.NewLikeRepository(db)
	likeSvc := likeService.NewLikeService(likeRepository, postRepository, queryCache)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Category routes
		protected.GET("/categories", categoryHandler.GetCategories)
		protected.POST("/categories", categoryHandler.CreateCategory)
		protected.DELETE("/categories/:category_id", categoryHandler.DeleteCategory)

		// Thread routes
		protected.GET("/threads", threadHandler.GetThreads)
		protected.POST("/threads", threadHandler.CreateThread)
		protected.GET("/threads/:thread_id", threadHandler.GetThread)
		protected.PUT("/threads/:thread_id", threadHandler.UpdateThread)
		protected.PUT("/threads/:thread_id/state", threadHandler.SetState)
		protected.DELETE("/threads/:thread_id", threadHandler.DeleteThread)
		protected.POST("/threads/:thread_id/read", threadHandler.MarkRead)
		protected.POST("/threads/:thread_id/follow", threadHandler.FollowThread)
		protected.DELETE("/threads/:thread_id/follow", threadHandler.UnfollowThread)

		// Post routes
		protected.GET("/threads/:thread_id/posts", postHandler.GetPosts)
		protected.POST("/posts", postHandler.CreatePost)
		protected.PUT("/posts/:post_id", postHandler.UpdatePost)
		protected.PUT("/posts/:post_id/prompting", postHandler.UpdatePromptingPost)
		protected.DELETE("/posts/:post_id", postHandler.DeletePost)

		// Like routes
		protected.POST("/posts/:post_id/likes", likeHandler.LikePost)
		protected.DELETE("/posts/:post_id/likes", likeHandler.UnlikePost)

		// Search maintenance
		protected.POST("/search/rebuild", searchHandler.RebuildIndex)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
