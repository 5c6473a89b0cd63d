package repository

import (
	"gorm.io/gorm"

	"github.com/hanpage/bookreview_go_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Update(comment *model.Comment) error {
	return r.db.Save(comment).Error
}

// DeleteWithReplies removes the comment and any replies pointing at it
// in one transaction, mirroring the review cascade.
func (r *CommentRepository) DeleteWithReplies(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Comment{}, id).Error
	})
}

// ListByReviewID returns every comment of a review as a flat list in
// creation order. Replies carry parent_id; the UI does the indenting.
func (r *CommentRepository) ListByReviewID(reviewID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("review_id = ?", reviewID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByUserID returns a page of one author's comments with the owning
// review preloaded so its title can be shown.
func (r *CommentRepository) ListByUserID(userID int64, page, pageSize int, sortKey string) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	var total int64

	query := r.db.Model(&model.Comment{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		return []*model.Comment{}, total, nil
	}

	switch sortKey {
	case SortOldest:
		query = query.Order("created_at ASC")
	default: // latest
		query = query.Order("created_at DESC")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Review").Offset(offset).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

func (r *CommentRepository) CountByReviewID(reviewID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("review_id = ?", reviewID).Count(&count).Error
	return count, err
}
