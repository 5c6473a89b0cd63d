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

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// Create publishes a review.
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.reviewService.Create(userID, &req)
	if err != nil {
		switch err {
		case service.ErrMissingFields:
			response.ParamError(c, err.Error())
		default:
			log.Printf("create review failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "review created", item)
}

// List returns one page of reviews.
// GET /api/v1/reviews?page=1&sort=latest&filter_by=title&q=...
func (h *ReviewHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	sortKey := c.DefaultQuery("sort", repository.SortLatest)
	filterField := c.Query("filter_by")
	filterTerm := c.Query("q")

	items, total, err := h.reviewService.List(page, sortKey, filterField, filterTerm)
	if err != nil {
		log.Printf("list reviews failed: %v", err)
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, service.ReviewPageSize, items)
}

// Get returns a single review without touching its view count.
// GET /api/v1/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid review id")
		return
	}

	item, err := h.reviewService.Get(reviewID)
	if err != nil {
		switch err {
		case service.ErrReviewNotFound:
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("get review failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, item)
}

// RecordView bumps the view counter. Reads never do this implicitly.
// POST /api/v1/reviews/:id/view
func (h *ReviewHandler) RecordView(c *gin.Context) {
	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid review id")
		return
	}

	if err := h.reviewService.RecordView(reviewID); err != nil {
		switch err {
		case service.ErrReviewNotFound:
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("record view failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, nil)
}

// Update edits a review owned by the caller (or any review, for admins).
// PUT /api/v1/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
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

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.reviewService.Update(userID, reviewID, &req)
	if err != nil {
		switch err {
		case service.ErrMissingFields:
			response.ParamError(c, err.Error())
		case service.ErrReviewNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrReviewPermission:
			response.PermissionError(c, err.Error())
		default:
			log.Printf("update review failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "review updated", item)
}

// Delete removes a review and its comments.
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
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

	if err := h.reviewService.Delete(userID, reviewID); err != nil {
		switch err {
		case service.ErrReviewNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrReviewPermission:
			response.PermissionError(c, err.Error())
		default:
			log.Printf("delete review failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "review deleted", nil)
}

// MyReviews lists the caller's own reviews.
// GET /api/v1/users/me/reviews?page=1
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	items, total, err := h.reviewService.ListByAuthor(userID, page)
	if err != nil {
		log.Printf("list my reviews failed: %v", err)
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, service.ReviewPageSize, items)
}
