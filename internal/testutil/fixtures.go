package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/hanpage/bookreview_go_server/internal/model"
)

// seq keeps fixture usernames unique; the column carries a unique index.
var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser inserts a user with sensible defaults.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("u%d", n),
		Email:         &email,
		PasswordHash:  &passwordHash,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername overrides the generated username.
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail overrides the generated email.
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithAdmin marks the user as an administrator.
func WithAdmin() func(*model.User) {
	return func(u *model.User) {
		u.IsAdmin = true
	}
}

// TestReview inserts a review authored by the given user.
func TestReview(t *testing.T, db *gorm.DB, user *model.User, opts ...func(*model.Review)) *model.Review {
	t.Helper()

	n := nextSeq()
	review := &model.Review{
		UserID:    user.ID,
		Username:  user.Username,
		Title:     fmt.Sprintf("Test Review %d", n),
		BookTitle: fmt.Sprintf("Test Book %d", n),
		Content:   "A book worth talking about.",
	}

	for _, opt := range opts {
		opt(review)
	}

	if err := db.Create(review).Error; err != nil {
		t.Fatalf("Failed to create test review: %v", err)
	}

	return review
}

// WithTitle sets the review title.
func WithTitle(title string) func(*model.Review) {
	return func(r *model.Review) {
		r.Title = title
	}
}

// WithBookTitle sets the reviewed book's title.
func WithBookTitle(bookTitle string) func(*model.Review) {
	return func(r *model.Review) {
		r.BookTitle = bookTitle
	}
}

// WithViews sets the view counter.
func WithViews(views int64) func(*model.Review) {
	return func(r *model.Review) {
		r.Views = views
	}
}

// TestComment inserts a top-level comment on a review.
func TestComment(t *testing.T, db *gorm.DB, user *model.User, review *model.Review, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserID:   user.ID,
		Username: user.Username,
		ReviewID: review.ID,
		Content:  fmt.Sprintf("Test comment %d", nextSeq()),
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// TestReply inserts a reply under a top-level comment.
func TestReply(t *testing.T, db *gorm.DB, user *model.User, parent *model.Comment, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	reply := &model.Comment{
		UserID:   user.ID,
		Username: user.Username,
		ReviewID: parent.ReviewID,
		ParentID: &parent.ID,
		Content:  fmt.Sprintf("Test reply %d", nextSeq()),
	}

	for _, opt := range opts {
		opt(reply)
	}

	if err := db.Create(reply).Error; err != nil {
		t.Fatalf("Failed to create test reply: %v", err)
	}

	return reply
}

// WithContent sets the comment content.
func WithContent(content string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.Content = content
	}
}
