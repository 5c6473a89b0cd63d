package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hanpage/bookreview_go_server/config"
	"github.com/hanpage/bookreview_go_server/internal/model"
	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/repository"
)

var (
	ErrCommentNotFound   = errors.New("comment not found")
	ErrCommentPermission = errors.New("no permission to modify this comment")
	ErrEmptyContent      = errors.New("content is required")
	ErrParentNotFound    = errors.New("parent comment not found")
	ErrParentMismatch    = errors.New("parent comment belongs to a different review")
	ErrReplyDepth        = errors.New("replying to a reply is not allowed")
)

// CommentPageSize applies to the "my comments" listing. The per-review
// listing is flat and unpaged.
const CommentPageSize = 5

type CommentService struct {
	commentRepo *repository.CommentRepository
	reviewRepo  *repository.ReviewRepository
	userRepo    *repository.UserRepository
	cfg         *config.Config
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	reviewRepo *repository.ReviewRepository,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		cfg:         cfg,
	}
}

// Create attaches a comment to a review, optionally as a reply to a
// top-level comment. Nesting is a single level: a reply whose parent is
// itself a reply is rejected outright.
func (s *CommentService) Create(userID, reviewID int64, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	if _, err := s.reviewRepo.GetByID(reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}

		if parent.ReviewID != reviewID {
			return nil, ErrParentMismatch
		}
		if parent.ParentID != nil {
			return nil, ErrReplyDepth
		}
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		UserID:   userID,
		Username: user.Username,
		ReviewID: reviewID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	return buildCommentItem(comment), nil
}

// Update replaces the comment content.
func (s *CommentService) Update(userID, commentID int64, req *dto.UpdateCommentRequest) (*dto.CommentItem, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	actor, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !CanMutate(actor.ID, actor.IsAdmin, comment.UserID) {
		return nil, ErrCommentPermission
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	return buildCommentItem(comment), nil
}

// Delete removes the comment and its replies atomically.
func (s *CommentService) Delete(userID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	actor, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !CanMutate(actor.ID, actor.IsAdmin, comment.UserID) {
		return ErrCommentPermission
	}

	return s.commentRepo.DeleteWithReplies(commentID)
}

// ListByReview returns all comments of a review as a flat list in
// creation order. A review with no comments (or a deleted review)
// yields an empty list.
func (s *CommentService) ListByReview(reviewID int64) ([]*dto.CommentItem, error) {
	comments, err := s.commentRepo.ListByReviewID(reviewID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CommentItem, len(comments))
	for i, c := range comments {
		items[i] = buildCommentItem(c)
	}

	return items, nil
}

// ListByAuthor returns a page of the actor's own comments with the
// owning review's title attached.
func (s *CommentService) ListByAuthor(userID int64, page int, sortKey string) ([]*dto.MyCommentItem, int64, error) {
	sortKey = normalizeCommentSort(sortKey)

	comments, total, err := s.commentRepo.ListByUserID(userID, page, CommentPageSize, sortKey)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.MyCommentItem, len(comments))
	for i, c := range comments {
		items[i] = &dto.MyCommentItem{
			CommentItem: *buildCommentItem(c),
		}
		if c.Review != nil {
			items[i].ReviewTitle = c.Review.Title
		}
	}

	return items, total, nil
}

func normalizeCommentSort(sortKey string) string {
	if sortKey == repository.SortOldest {
		return sortKey
	}
	return repository.SortLatest
}

func buildCommentItem(c *model.Comment) *dto.CommentItem {
	return &dto.CommentItem{
		ID:        c.ID,
		ReviewID:  c.ReviewID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		Username:  c.Username,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
