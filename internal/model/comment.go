package model

import (
	"time"
)

type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Username  string    `gorm:"size:50;not null" json:"username"` // display only; ownership checks use UserID
	ReviewID  int64     `gorm:"not null;index" json:"review_id"`
	ParentID  *int64    `gorm:"index" json:"parent_id,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Review *Review `gorm:"foreignKey:ReviewID" json:"review,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
