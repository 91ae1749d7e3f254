package handlers

import (
	"net/http"

	"blogfeed/middleware"
	"blogfeed/models"
	"blogfeed/services"

	"github.com/gin-contrib/expvar"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Post        *PostHandler
	Feed        *FeedHandler
	Tag         *TagHandler
	Interaction *InteractionHandler
}

// NewRouter registers every route on a new engine.
func NewRouter(h Handlers, jwtSecret []byte) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/debug/vars", expvar.Handler())

	v1 := router.Group("/api/v1")
	{
		// Public routes, viewer is optional
		public := v1.Group("")
		public.Use(middleware.OptionalAuth(jwtSecret))
		{
			feeds := public.Group("/feeds")
			{
				feeds.GET("/latest", h.Feed.Feed(services.FeedLatest))
				feeds.GET("/top", h.Feed.Feed(services.FeedTop))
				feeds.GET("/relevant", h.Feed.Feed(services.FeedRelevant))
				feeds.GET("/author/:id", h.Feed.AuthorFeed)
				feeds.GET("/tag/:name", h.Feed.TagFeed)
			}

			public.GET("/posts/:id", h.Post.GetPost)
			public.GET("/slugs/:lang/:slug", h.Post.GetPostBySlug)
			public.GET("/tags", h.Tag.GetTags)
			public.GET("/tags/:id", h.Tag.GetTag)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			posts := protected.Group("/posts")
			{
				posts.POST("", h.Post.CreatePost)
				posts.PUT("/:id", h.Post.UpdatePost)
				posts.DELETE("/:id", h.Post.DeletePost)
				posts.POST("/:id/publish", h.Post.PublishPost)
				posts.POST("/:id/unpublish", h.Post.UnpublishPost)
				posts.POST("/:id/tags", h.Post.AddTag)
				posts.DELETE("/:id/tags/:name", h.Post.RemoveTag)
				posts.POST("/:id/reactions", h.Interaction.ToggleReaction)
				posts.POST("/:id/bookmark", h.Interaction.ToggleBookmark)
			}

			protected.GET("/bookmarks", h.Interaction.GetBookmarks)
			protected.POST("/users/:id/follow", h.Interaction.ToggleFollow)

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(string(models.RoleAdmin)))
			{
				admin.DELETE("/posts/:id", h.Post.PurgePost)
				admin.POST("/reconcile", h.Post.ReconcileCounters)
			}
		}
	}

	return router
}
