package model

import "time"

// SlideAttachment is an image owned by exactly one slide.
// The bytes live in file storage; FileName is the original upload name and
// StoredName is the key inside storage.
type SlideAttachment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SlideID    uint      `json:"slide_id" gorm:"not null;index"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	StoredName string    `json:"-" gorm:"size:255;not null"`
	FileURL    string    `json:"file_url" gorm:"size:512;not null"`
	FileSize   int64     `json:"file_size" gorm:"not null"`
	MimeType   string    `json:"mime_type" gorm:"size:64;not null"`
	Order      int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
}
