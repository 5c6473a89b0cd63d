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
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewPermission = errors.New("no permission to modify this review")
	ErrMissingFields    = errors.New("title, book title and content are required")
)

// ReviewPageSize is fixed per listing; callers pick a page, not a size.
const ReviewPageSize = 10

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	userRepo   *repository.UserRepository
	cfg        *config.Config
}

func NewReviewService(reviewRepo *repository.ReviewRepository, userRepo *repository.UserRepository, cfg *config.Config) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		cfg:        cfg,
	}
}

// Create validates the mandatory fields and stamps the author.
func (s *ReviewService) Create(userID int64, req *dto.CreateReviewRequest) (*dto.ReviewItem, error) {
	if strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.BookTitle) == "" ||
		strings.TrimSpace(req.Content) == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	review := &model.Review{
		UserID:     userID,
		Username:   user.Username,
		Title:      req.Title,
		BookTitle:  req.BookTitle,
		BookAuthor: req.BookAuthor,
		Publisher:  req.Publisher,
		Content:    req.Content,
	}

	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	return buildReviewItem(review, true), nil
}

// Get returns the review without side effects. Recording a view is the
// caller's explicit, separate call to RecordView.
func (s *ReviewService) Get(id int64) (*dto.ReviewItem, error) {
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	return buildReviewItem(review, true), nil
}

// RecordView bumps the view counter for a review.
func (s *ReviewService) RecordView(id int64) error {
	rows, err := s.reviewRepo.IncrementViews(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Update applies the mutable fields. A provided-but-blank mandatory
// field is rejected; optional fields may be cleared.
func (s *ReviewService) Update(userID, reviewID int64, req *dto.UpdateReviewRequest) (*dto.ReviewItem, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
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

	if !CanMutate(actor.ID, actor.IsAdmin, review.UserID) {
		return nil, ErrReviewPermission
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrMissingFields
		}
		review.Title = *req.Title
	}
	if req.BookTitle != nil {
		if strings.TrimSpace(*req.BookTitle) == "" {
			return nil, ErrMissingFields
		}
		review.BookTitle = *req.BookTitle
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, ErrMissingFields
		}
		review.Content = *req.Content
	}
	if req.BookAuthor != nil {
		review.BookAuthor = *req.BookAuthor
	}
	if req.Publisher != nil {
		review.Publisher = *req.Publisher
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	return buildReviewItem(review, true), nil
}

// Delete removes the review and all of its comments atomically.
func (s *ReviewService) Delete(userID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
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

	if !CanMutate(actor.ID, actor.IsAdmin, review.UserID) {
		return ErrReviewPermission
	}

	return s.reviewRepo.DeleteWithComments(reviewID)
}

// List returns a page of reviews. An unknown sort key falls back to
// latest; an out-of-range page yields an empty page, never an error.
func (s *ReviewService) List(page int, sortKey, filterField, filterTerm string) ([]*dto.ReviewItem, int64, error) {
	sortKey = normalizeReviewSort(sortKey)

	reviews, total, err := s.reviewRepo.List(page, ReviewPageSize, sortKey, filterField, filterTerm)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ReviewItem, len(reviews))
	for i, r := range reviews {
		items[i] = buildReviewItem(r, false)
	}

	return items, total, nil
}

// ListByAuthor returns a page of the actor's own reviews.
func (s *ReviewService) ListByAuthor(userID int64, page int) ([]*dto.ReviewItem, int64, error) {
	reviews, total, err := s.reviewRepo.ListByUserID(userID, page, ReviewPageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ReviewItem, len(reviews))
	for i, r := range reviews {
		items[i] = buildReviewItem(r, false)
	}

	return items, total, nil
}

func normalizeReviewSort(sortKey string) string {
	switch sortKey {
	case repository.SortOldest, repository.SortMostViewed:
		return sortKey
	default:
		return repository.SortLatest
	}
}

func buildReviewItem(r *model.Review, withContent bool) *dto.ReviewItem {
	item := &dto.ReviewItem{
		ID:         r.ID,
		Title:      r.Title,
		BookTitle:  r.BookTitle,
		BookAuthor: r.BookAuthor,
		Publisher:  r.Publisher,
		Username:   r.Username,
		Views:      r.Views,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
	if withContent {
		item.Content = r.Content
	}
	return item
}
