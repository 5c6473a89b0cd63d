package main

import (
	"fmt"
	"log"

	"github.com/hanpage/bookreview_go_server/config"
	"github.com/hanpage/bookreview_go_server/internal/api"
	"github.com/hanpage/bookreview_go_server/internal/api/handler"
	"github.com/hanpage/bookreview_go_server/internal/database"
	"github.com/hanpage/bookreview_go_server/internal/pkg/email"
	"github.com/hanpage/bookreview_go_server/internal/pkg/oauth"
	"github.com/hanpage/bookreview_go_server/internal/pkg/oss"
	"github.com/hanpage/bookreview_go_server/internal/pkg/verification"
	"github.com/hanpage/bookreview_go_server/internal/repository"
	"github.com/hanpage/bookreview_go_server/internal/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	stateStore := oauth.NewStateStore(rdb)
	verifyStore := verification.NewStore(rdb)
	emailSvc := email.NewService(&cfg.Email)

	var ossClient *oss.Client
	if cfg.OSS.BucketName != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to init OSS client: %v", err)
		}
		log.Println("OSS client ready")
	} else {
		log.Println("OSS not configured, avatar upload disabled")
	}

	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, stateStore, verifyStore, emailSvc, cfg)
	userService := service.NewUserService(userRepo, ossClient, cfg)
	reviewService := service.NewReviewService(reviewRepo, userRepo, cfg)
	commentService := service.NewCommentService(commentRepo, reviewRepo, userRepo, cfg)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	router := api.NewRouter(
		authHandler,
		userHandler,
		reviewHandler,
		commentHandler,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
