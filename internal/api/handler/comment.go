package handler

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hanpage/bookreview_go_server/internal/api/middleware"
	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/pkg/response"
	"github.com/hanpage/bookreview_go_server/internal/repository"
	"github.com/hanpage/bookreview_go_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create adds a comment or a reply under a review.
// POST /api/v1/reviews/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid review id")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.commentService.Create(userID, reviewID, &req)
	if err != nil {
		switch err {
		case service.ErrEmptyContent, service.ErrParentMismatch, service.ErrReplyDepth:
			response.ParamError(c, err.Error())
		case service.ErrReviewNotFound, service.ErrParentNotFound:
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("create comment failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "comment created", item)
}

// ListByReview returns every comment of a review, oldest first.
// GET /api/v1/reviews/:id/comments
func (h *CommentHandler) ListByReview(c *gin.Context) {
	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid review id")
		return
	}

	items, err := h.commentService.ListByReview(reviewID)
	if err != nil {
		log.Printf("list comments failed: %v", err)
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

// Update edits a comment's content.
// PUT /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid comment id")
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.commentService.Update(userID, commentID, &req)
	if err != nil {
		switch err {
		case service.ErrEmptyContent:
			response.ParamError(c, err.Error())
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentPermission:
			response.PermissionError(c, err.Error())
		default:
			log.Printf("update comment failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "comment updated", item)
}

// Delete removes a comment together with its replies.
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid comment id")
		return
	}

	if err := h.commentService.Delete(userID, commentID); err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentPermission:
			response.PermissionError(c, err.Error())
		default:
			log.Printf("delete comment failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "comment deleted", nil)
}

// MyComments lists the caller's comments across all reviews.
// GET /api/v1/users/me/comments?page=1&sort=latest
func (h *CommentHandler) MyComments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	sortKey := c.DefaultQuery("sort", repository.SortLatest)

	items, total, err := h.commentService.ListByAuthor(userID, page, sortKey)
	if err != nil {
		log.Printf("list my comments failed: %v", err)
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, service.CommentPageSize, items)
}
