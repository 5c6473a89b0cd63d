package handler

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpage/bookreview_go_server/config"
	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/pkg/oauth"
	"github.com/hanpage/bookreview_go_server/internal/pkg/response"
	"github.com/hanpage/bookreview_go_server/internal/pkg/verification"
	"github.com/hanpage/bookreview_go_server/internal/repository"
	"github.com/hanpage/bookreview_go_server/internal/service"
	"github.com/hanpage/bookreview_go_server/internal/testutil"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, *miniredis.Miniredis) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
	}

	userRepo := repository.NewUserRepository(db)
	stateStore := oauth.NewStateStore(rdb)
	verifyStore := verification.NewStore(rdb)
	authService := service.NewAuthService(userRepo, stateStore, verifyStore, nil, cfg)
	return NewAuthHandler(authService), mr
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "secret123",
	})
	resp := parseResponse(t, w)

	require.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotZero(t, data["user_id"])
}

func TestAuthHandler_Register_MissingBody(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "reader",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "reader",
		Email:    "first@example.com",
		Password: "secret123",
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "reader",
		Email:    "second@example.com",
		Password: "secret123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
}

func TestAuthHandler_VerifyEmailThenLogin(t *testing.T) {
	handler, mr := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/verify-email", handler.VerifyEmail)
	router.POST("/login", handler.Login)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "secret123",
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	// Login before verification is refused.
	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "reader@example.com",
		Password: "secret123",
	})
	assert.Equal(t, response.CodePermissionDenied, parseResponse(t, w).Code)

	code, err := mr.Get("verify:email:reader@example.com")
	require.NoError(t, err)

	w = performRequest(router, "POST", "/verify-email", dto.VerifyEmailRequest{
		Email: "reader@example.com",
		Code:  code,
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "reader@example.com",
		Password: "secret123",
	})
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, mr := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/verify-email", handler.VerifyEmail)
	router.POST("/login", handler.Login)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "secret123",
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	code, err := mr.Get("verify:email:reader@example.com")
	require.NoError(t, err)
	w = performRequest(router, "POST", "/verify-email", dto.VerifyEmailRequest{
		Email: "reader@example.com",
		Code:  code,
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "reader@example.com",
		Password: "wrong",
	})
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestAuthHandler_CheckUsername(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.GET("/check-username", handler.CheckUsername)
	router.POST("/register", handler.Register)

	w := performRequest(router, "GET", "/check-username?username=reader", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["available"])

	w = performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "secret123",
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "GET", "/check-username?username=reader", nil)
	resp = parseResponse(t, w)
	data, ok = resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["available"])
}

func TestAuthHandler_CheckUsername_TooLong(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.GET("/check-username", handler.CheckUsername)

	w := performRequest(router, "GET", "/check-username?username=waytoolongname", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}
