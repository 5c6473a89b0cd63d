package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/hanpage/bookreview_go_server/internal/api/middleware"
	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/pkg/response"
	"github.com/hanpage/bookreview_go_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the caller's profile.
// GET /api/v1/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.userService.GetProfile(userID)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("get profile failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// UpdateProfile edits the caller's bio.
// PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("update profile failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "profile updated", info)
}

// UploadAvatar replaces the caller's avatar.
// POST /api/v1/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "avatar file is required")
		return
	}
	defer file.Close()

	avatarURL, err := h.userService.UploadAvatar(userID, file, header.Filename)
	if err != nil {
		switch err {
		case service.ErrOSSNotConfigured:
			response.ServerError(c, "avatar storage is not configured")
		default:
			log.Printf("upload avatar failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "avatar updated", dto.UploadAvatarResponse{
		AvatarURL: avatarURL,
	})
}
