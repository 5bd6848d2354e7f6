package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/config"
	"github.com/id8-org/id8-recovery/internal/handler"
	"github.com/id8-org/id8-recovery/internal/llm"
	"github.com/id8-org/id8-recovery/internal/logger"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/internal/notify"
	"github.com/id8-org/id8-recovery/internal/pipeline"
	"github.com/id8-org/id8-recovery/internal/router"
	"github.com/id8-org/id8-recovery/internal/service"
	"github.com/id8-org/id8-recovery/internal/sse"
	"github.com/id8-org/id8-recovery/internal/trending"
	"github.com/id8-org/id8-recovery/pkg/googleauth"
)

func main() {
	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		lg.Fatal("connect database", "error", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Team{},
		&model.Invite{},
		&model.Repo{},
		&model.Idea{},
		&model.Shortlist{},
		&model.IdeaVersion{},
		&model.Collaborator{},
		&model.ChangeProposal{},
		&model.Comment{},
		&model.CaseStudy{},
		&model.MarketSnapshot{},
		&model.LensInsight{},
		&model.VCThesis{},
		&model.InvestorDeck{},
	); err != nil {
		lg.Fatal("auto migrate", "error", err)
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Core components
	sseHub := sse.NewHub(rdb)
	llmClient := llm.NewClient(cfg.LLM, lg)
	googleOAuth := googleauth.NewOAuthClient(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI)

	// Notifier
	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, lg)
	} else {
		notifier = notify.NoopNotifier{}
	}

	// Services
	authService := service.NewAuthService(db, cfg.JWT)
	profileService := service.NewProfileService(db, cfg.Encrypt.AESKey)
	versionService := service.NewVersionService(db)
	repoService := service.NewRepoService(db)
	teamService := service.NewTeamService(db)
	ideaService := service.NewIdeaService(db, llmClient, profileService, versionService, notifier, cfg.LLM.DeepDiveModel, lg)
	collabService := service.NewCollabService(db, notifier, lg)
	insightService := service.NewInsightService(db, llmClient, lg)

	// Nightly idea pipeline
	if cfg.Pipeline.Enabled {
		trendingClient := trending.NewClient(cfg.Pipeline.TrendingURL)
		runner := pipeline.NewRunner(db, cfg.Pipeline, trendingClient, repoService, llmClient, sseHub, lg)
		go runner.Start(context.Background())
		defer runner.Shutdown()
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService, googleOAuth)
	profileHandler := handler.NewProfileHandler(profileService)
	ideaHandler := handler.NewIdeaHandler(ideaService, versionService, sseHub)
	collabHandler := handler.NewCollabHandler(collabService)
	insightHandler := handler.NewInsightHandler(insightService)
	repoHandler := handler.NewRepoHandler(repoService)
	teamHandler := handler.NewTeamHandler(teamService)

	// Gin engine
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Setup routes
	router.Setup(r, router.Deps{
		DB:             db,
		JWTSecret:      cfg.JWT.Secret,
		AuthHandler:    authHandler,
		ProfileHandler: profileHandler,
		IdeaHandler:    ideaHandler,
		CollabHandler:  collabHandler,
		InsightHandler: insightHandler,
		RepoHandler:    repoHandler,
		TeamHandler:    teamHandler,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	lg.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		lg.Fatal("server run", "error", err)
	}
}
