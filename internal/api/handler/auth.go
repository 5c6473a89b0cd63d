package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/pkg/response"
	"github.com/hanpage/bookreview_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a credentials account and sends a verification code.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case service.ErrUsernameLength:
			response.ParamError(c, err.Error())
		case service.ErrEmailExists, service.ErrUsernameTaken:
			response.DuplicateError(c, err.Error())
		default:
			log.Printf("register failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "registered", resp)
}

// Login exchanges credentials for a token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			response.AuthError(c, err.Error())
		case service.ErrEmailNotVerified:
			response.PermissionError(c, err.Error())
		default:
			log.Printf("login failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// VerifyEmail consumes a verification code and logs the user in.
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.VerifyEmail(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case service.ErrInvalidVerifyCode:
			response.ParamError(c, err.Error())
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("verify email failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// TempPassword emails a temporary password.
// POST /api/v1/auth/temp-password
func (h *AuthHandler) TempPassword(c *gin.Context) {
	var req dto.TempPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.IssueTempPassword(c.Request.Context(), req.Email); err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("temp password failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "temporary password sent", nil)
}

// CheckUsername reports whether a username is free.
// GET /api/v1/auth/check-username?username=...
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")

	available, err := h.authService.CheckUsername(username)
	if err != nil {
		switch err {
		case service.ErrUsernameLength:
			response.ParamError(c, err.Error())
		default:
			log.Printf("check username failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, dto.CheckUsernameResponse{
		Username:  username,
		Available: available,
	})
}

// GithubAuth redirects to the GitHub consent page.
// GET /api/v1/auth/github?username=...&redirect_uri=...
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	username := c.Query("username")
	redirectURI := c.Query("redirect_uri")

	authURL, err := h.authService.BeginGithub(c.Request.Context(), username, redirectURI)
	if err != nil {
		switch err {
		case service.ErrUsernameLength:
			response.ParamError(c, err.Error())
		case service.ErrUsernameTaken:
			response.DuplicateError(c, err.Error())
		default:
			log.Printf("github auth failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	c.Redirect(302, authURL)
}

// GithubCallback completes the GitHub OAuth flow.
// GET /api/v1/auth/github/callback?state=...&code=...
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")

	resp, err := h.authService.GithubCallback(c.Request.Context(), state, code)
	if err != nil {
		switch err {
		case service.ErrInvalidOAuthState:
			response.AuthError(c, err.Error())
		case service.ErrUsernameTaken:
			response.DuplicateError(c, err.Error())
		default:
			log.Printf("github callback failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// KakaoAuth redirects to the Kakao consent page.
// GET /api/v1/auth/kakao?username=...&redirect_uri=...
func (h *AuthHandler) KakaoAuth(c *gin.Context) {
	username := c.Query("username")
	redirectURI := c.Query("redirect_uri")

	authURL, err := h.authService.BeginKakao(c.Request.Context(), username, redirectURI)
	if err != nil {
		switch err {
		case service.ErrUsernameLength:
			response.ParamError(c, err.Error())
		case service.ErrUsernameTaken:
			response.DuplicateError(c, err.Error())
		default:
			log.Printf("kakao auth failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	c.Redirect(302, authURL)
}

// KakaoCallback completes the Kakao OAuth flow.
// GET /api/v1/auth/kakao/callback?state=...&code=...
func (h *AuthHandler) KakaoCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")

	resp, err := h.authService.KakaoCallback(c.Request.Context(), state, code)
	if err != nil {
		switch err {
		case service.ErrInvalidOAuthState:
			response.AuthError(c, err.Error())
		case service.ErrUsernameTaken:
			response.DuplicateError(c, err.Error())
		default:
			log.Printf("kakao callback failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
