package dto

type CreateReviewRequest struct {
	Title      string `json:"title"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	Publisher  string `json:"publisher"`
	Content    string `json:"content"`
}

// UpdateReviewRequest carries only the mutable fields; nil means "leave as is".
type UpdateReviewRequest struct {
	Title      *string `json:"title"`
	BookTitle  *string `json:"book_title"`
	BookAuthor *string `json:"book_author"`
	Publisher  *string `json:"publisher"`
	Content    *string `json:"content"`
}

type ReviewItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author,omitempty"`
	Publisher  string `json:"publisher,omitempty"`
	Content    string `json:"content,omitempty"`
	Username   string `json:"username"`
	Views      int64  `json:"views"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}
