package model

import (
	"time"
)

type Review struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	Username   string    `gorm:"size:50;not null" json:"username"` // display only; ownership checks use UserID
	Title      string    `gorm:"size:200;not null" json:"title"`
	BookTitle  string    `gorm:"size:200;not null" json:"book_title"`
	BookAuthor string    `gorm:"size:100" json:"book_author"`
	Publisher  string    `gorm:"size:100" json:"publisher"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Views      int64     `gorm:"default:0" json:"views"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}
