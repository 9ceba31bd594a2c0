package model

import "time"

// FixedContent is a non-rotating block shown alongside the slides.
type FixedContent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Type      string    `json:"type" gorm:"column:block_type;size:64;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	Order     int       `json:"order" gorm:"column:sort_order;not null;default:0;index"`
	FontSize  int       `json:"font_size" gorm:"not null;default:16"`
	Tenant    string    `json:"tenant" gorm:"size:64;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
