package dto

type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type CommentItem struct {
	ID        int64  `json:"id"`
	ReviewID  int64  `json:"review_id"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// MyCommentItem is CommentItem plus the owning review's title, for
// the "my comments" listing.
type MyCommentItem struct {
	CommentItem
	ReviewTitle string `json:"review_title"`
}
