package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/hanpage/bookreview_go_server/internal/model"
)

// Sort keys accepted by List. Anything else falls back to SortLatest.
const (
	SortLatest     = "latest"
	SortOldest     = "oldest"
	SortMostViewed = "most-viewed"
)

// Filter fields accepted by List.
const (
	FilterTitle    = "title"
	FilterUsername = "username"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(review *model.Review) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepository) GetByID(id int64) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("id = ?", id).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) Update(review *model.Review) error {
	return r.db.Save(review).Error
}

// DeleteWithComments removes the review and every comment attached to it
// in one transaction. Either both go or neither does.
func (r *ReviewRepository) DeleteWithComments(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Review{}, id).Error
	})
}

// IncrementViews bumps the view counter. Reads never do this implicitly;
// the caller records a view as a separate operation.
func (r *ReviewRepository) IncrementViews(id int64) (int64, error) {
	result := r.db.Model(&model.Review{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1"))
	return result.RowsAffected, result.Error
}

// List returns a page of reviews with the total matching count.
// filterField/filterTerm apply a case-insensitive substring match on
// title or username. A page before 1 or past the end yields no rows.
func (r *ReviewRepository) List(page, pageSize int, sortKey, filterField, filterTerm string) ([]*model.Review, int64, error) {
	var reviews []*model.Review
	var total int64

	query := r.db.Model(&model.Review{})
	query = applyReviewFilter(query, filterField, filterTerm)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		return []*model.Review{}, total, nil
	}

	switch sortKey {
	case SortOldest:
		query = query.Order("created_at ASC")
	case SortMostViewed:
		query = query.Order("views DESC, created_at DESC")
	default: // latest
		query = query.Order("created_at DESC")
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// ListByUserID returns a page of one author's reviews, newest first.
func (r *ReviewRepository) ListByUserID(userID int64, page, pageSize int) ([]*model.Review, int64, error) {
	var reviews []*model.Review
	var total int64

	query := r.db.Model(&model.Review{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		return []*model.Review{}, total, nil
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func applyReviewFilter(query *gorm.DB, field, term string) *gorm.DB {
	if term == "" {
		return query
	}

	pattern := "%" + strings.ToLower(term) + "%"
	switch field {
	case FilterTitle:
		return query.Where("LOWER(title) LIKE ?", pattern)
	case FilterUsername:
		return query.Where("LOWER(username) LIKE ?", pattern)
	default:
		return query
	}
}
