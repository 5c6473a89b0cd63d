package api

import (
	"github.com/gin-gonic/gin"

	"github.com/hanpage/bookreview_go_server/config"
	"github.com/hanpage/bookreview_go_server/internal/api/handler"
	"github.com/hanpage/bookreview_go_server/internal/api/middleware"
)

type Router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	reviewHandler  *handler.ReviewHandler
	commentHandler *handler.CommentHandler
	cfg            *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	reviewHandler *handler.ReviewHandler,
	commentHandler *handler.CommentHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:    authHandler,
		userHandler:    userHandler,
		reviewHandler:  reviewHandler,
		commentHandler: commentHandler,
		cfg:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// Public - authentication
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.POST("/temp-password", r.authHandler.TempPassword)
			auth.GET("/check-username", r.authHandler.CheckUsername)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
			auth.GET("/kakao", r.authHandler.KakaoAuth)
			auth.GET("/kakao/callback", r.authHandler.KakaoCallback)
		}

		// Public - reviews and their comments (optional authentication)
		reviews := api.Group("/reviews")
		reviews.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			reviews.GET("", r.reviewHandler.List)
			reviews.GET("/:id", r.reviewHandler.Get)
			reviews.POST("/:id/view", r.reviewHandler.RecordView)
			reviews.GET("/:id/comments", r.commentHandler.ListByReview)
		}

		// Authenticated
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// Profile
			me := authenticated.Group("/users/me")
			{
				me.GET("", r.userHandler.GetProfile)
				me.PUT("", r.userHandler.UpdateProfile)
				me.POST("/avatar", r.userHandler.UploadAvatar)
				me.GET("/reviews", r.reviewHandler.MyReviews)
				me.GET("/comments", r.commentHandler.MyComments)
			}

			// Reviews
			authenticated.POST("/reviews", r.reviewHandler.Create)
			authenticated.PUT("/reviews/:id", r.reviewHandler.Update)
			authenticated.DELETE("/reviews/:id", r.reviewHandler.Delete)

			// Comments
			authenticated.POST("/reviews/:id/comments", r.commentHandler.Create)
			authenticated.PUT("/comments/:id", r.commentHandler.Update)
			authenticated.DELETE("/comments/:id", r.commentHandler.Delete)
		}
	}

	return engine
}
