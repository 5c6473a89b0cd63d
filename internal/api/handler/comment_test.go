package handler

import (
	"fmt"
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

func setupCommentHandler(t *testing.T) (*CommentHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	commentRepo := repository.NewCommentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentService := service.NewCommentService(commentRepo, reviewRepo, userRepo, &config.Config{})
	return NewCommentHandler(commentService), db
}

func TestCommentHandler_Create_Success(t *testing.T) {
	handler, db := setupCommentHandler(t)
	user := testutil.TestUser(t, db, testutil.WithUsername("reader"))
	review := testutil.TestReview(t, db, user)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/reviews/:id/comments", handler.Create)

	w := performRequest(router, "POST", fmt.Sprintf("/reviews/%d/comments", review.ID), dto.CreateCommentRequest{
		Content: "Couldn't agree more.",
	})
	resp := parseResponse(t, w)

	require.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "reader", data["username"])
}

func TestCommentHandler_Create_ReviewNotFound(t *testing.T) {
	handler, db := setupCommentHandler(t)
	user := testutil.TestUser(t, db)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/reviews/:id/comments", handler.Create)

	w := performRequest(router, "POST", "/reviews/99999/comments", dto.CreateCommentRequest{
		Content: "Into the void.",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestCommentHandler_Create_ReplyToReply(t *testing.T) {
	handler, db := setupCommentHandler(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)
	parent := testutil.TestComment(t, db, user, review)
	reply := testutil.TestReply(t, db, user, parent)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/reviews/:id/comments", handler.Create)

	w := performRequest(router, "POST", fmt.Sprintf("/reviews/%d/comments", review.ID), dto.CreateCommentRequest{
		Content:  "Going deeper.",
		ParentID: &reply.ID,
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestCommentHandler_ListByReview(t *testing.T) {
	handler, db := setupCommentHandler(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)
	testutil.TestComment(t, db, user, review)
	testutil.TestComment(t, db, user, review)

	router := gin.New()
	router.GET("/reviews/:id/comments", handler.ListByReview)

	w := performRequest(router, "GET", fmt.Sprintf("/reviews/%d/comments", review.ID), nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestCommentHandler_ListByReview_MissingReview(t *testing.T) {
	handler, _ := setupCommentHandler(t)

	router := gin.New()
	router.GET("/reviews/:id/comments", handler.ListByReview)

	w := performRequest(router, "GET", "/reviews/99999/comments", nil)
	resp := parseResponse(t, w)

	require.Equal(t, response.CodeSuccess, resp.Code)
	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestCommentHandler_Update_Forbidden(t *testing.T) {
	handler, db := setupCommentHandler(t)
	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, owner)
	comment := testutil.TestComment(t, db, owner, review)

	router := gin.New()
	router.Use(mockAuth(stranger.ID))
	router.PUT("/comments/:id", handler.Update)

	w := performRequest(router, "PUT", fmt.Sprintf("/comments/%d", comment.ID), dto.UpdateCommentRequest{
		Content: "Hijacked.",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestCommentHandler_Delete_Admin(t *testing.T) {
	handler, db := setupCommentHandler(t)
	owner := testutil.TestUser(t, db)
	admin := testutil.TestUser(t, db, testutil.WithAdmin())
	review := testutil.TestReview(t, db, owner)
	comment := testutil.TestComment(t, db, owner, review)

	router := gin.New()
	router.Use(mockAuth(admin.ID))
	router.DELETE("/comments/:id", handler.Delete)

	w := performRequest(router, "DELETE", fmt.Sprintf("/comments/%d", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestCommentHandler_MyComments(t *testing.T) {
	handler, db := setupCommentHandler(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)
	for i := 0; i < 6; i++ {
		testutil.TestComment(t, db, user, review)
	}

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.GET("/users/me/comments", handler.MyComments)

	w := performRequest(router, "GET", "/users/me/comments?page=1", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(6), data["total"])
	assert.Equal(t, float64(5), data["page_size"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 5)
}
