package handler

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hanpage/bookreview_go_server/config"
	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/pkg/response"
	"github.com/hanpage/bookreview_go_server/internal/repository"
	"github.com/hanpage/bookreview_go_server/internal/service"
	"github.com/hanpage/bookreview_go_server/internal/testutil"
)

func setupUserHandler(t *testing.T) (*UserHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, nil, &config.Config{})
	return NewUserHandler(userService), db
}

func TestUserHandler_GetProfile(t *testing.T) {
	handler, db := setupUserHandler(t)
	user := testutil.TestUser(t, db, testutil.WithUsername("reader"))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.GET("/users/me", handler.GetProfile)

	w := performRequest(router, "GET", "/users/me", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "reader", data["username"])
}

func TestUserHandler_GetProfile_Unauthenticated(t *testing.T) {
	handler, _ := setupUserHandler(t)

	router := gin.New()
	router.GET("/users/me", handler.GetProfile)

	w := performRequest(router, "GET", "/users/me", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	handler, db := setupUserHandler(t)
	user := testutil.TestUser(t, db, testutil.WithUsername("reader"))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.PUT("/users/me", handler.UpdateProfile)

	bio := "Rereads Le Guin every winter."
	w := performRequest(router, "PUT", "/users/me", dto.UpdateProfileRequest{Bio: &bio})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, bio, data["bio"])
	assert.Equal(t, "reader", data["username"])
}
