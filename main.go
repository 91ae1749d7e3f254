package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogfeed/config"
	"blogfeed/handlers"
	"blogfeed/helper"
	"blogfeed/repositories"
	"blogfeed/services"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}

	// Initialize repositories
	postRepo := repositories.NewPostRepository(db)
	translationRepo := repositories.NewTranslationRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	reactionRepo := repositories.NewReactionRepository(db)
	bookmarkRepo := repositories.NewBookmarkRepository(db)
	followRepo := repositories.NewFollowRepository(db)

	// Initialize services
	engagementService := services.NewEngagementService(reactionRepo, bookmarkRepo)
	tagService := services.NewTagService(tagRepo)
	var slugOpts []services.SlugOption
	if cfg.FoldSlugDiacritics {
		slugOpts = append(slugOpts, services.WithDiacriticFolding())
	}
	translationManager := services.NewTranslationManager(services.NewSlugService(translationRepo, slugOpts...))
	postService := services.NewPostService(postRepo, translationRepo, translationManager, tagService, engagementService)
	feedService := services.NewFeedService(postRepo, followRepo, engagementService)
	interactionService := services.NewInteractionService(postRepo, reactionRepo, bookmarkRepo, followRepo, engagementService)

	// Initialize handlers
	httpHelper := helper.NewHTTPHelper()
	router := handlers.NewRouter(handlers.Handlers{
		Post:        handlers.NewPostHandler(postService, httpHelper),
		Feed:        handlers.NewFeedHandler(feedService, httpHelper),
		Tag:         handlers.NewTagHandler(tagService, httpHelper),
		Interaction: handlers.NewInteractionHandler(interactionService, httpHelper),
	}, cfg.JWTSecret)

	scheduler := startReconcileJob(cfg.ReconcileCron, postService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

// startReconcileJob repairs drifted likes and bookmarks counters on a schedule.
// An empty schedule disables it.
func startReconcileJob(spec string, postService services.PostService) *cron.Cron {
	if spec == "" {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		n, err := postService.ReconcileCounters(ctx)
		if err != nil {
			log.Printf("[cron] reconcile counters: %v", err)
			return
		}
		log.Printf("[cron] reconciled counters on %d posts", n)
	})
	if err != nil {
		log.Printf("[cron] invalid RECONCILE_CRON %q: %v", spec, err)
		return nil
	}

	c.Start()
	log.Printf("[cron] counter reconciliation scheduled (%s)", spec)
	return c
}
