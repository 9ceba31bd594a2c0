package model

import "time"

const (
	// DefaultSlideDuration is the display time in seconds when none is given.
	DefaultSlideDuration = 5
	MinSlideDuration     = 1
	MaxSlideDuration     = 3600

	// DefaultFontSize is the body font size in pixels when none is given.
	DefaultFontSize = 16
	MinFontSize     = 8
	MaxFontSize     = 200
)

// Slide is a timed, ordered content unit shown in rotation on a display.
type Slide struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title" gorm:"size:255;not null"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	Duration   int        `json:"duration" gorm:"not null;default:5"`
	Order      int        `json:"order" gorm:"column:sort_order;not null;default:0;index"`
	IsActive   bool       `json:"is_active" gorm:"not null"`
	FontSize   int        `json:"font_size" gorm:"not null;default:16"`
	ExpiresAt  *time.Time `json:"expires_at" gorm:"index"`
	IsArchived bool       `json:"is_archived" gorm:"not null;default:false;index"`
	Tenant     string     `json:"tenant" gorm:"size:64;not null;index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relations
	Attachments []SlideAttachment `json:"attachments,omitempty" gorm:"foreignKey:SlideID;constraint:OnDelete:CASCADE"`
}

// IsDisplayEligible reports whether the slide belongs in the rotation at now.
func (s *Slide) IsDisplayEligible(now time.Time) bool {
	return s.IsActive && !s.IsArchived && (s.ExpiresAt == nil || s.ExpiresAt.After(now))
}

// IsExpired reports whether the slide has an expiry that is not after now.
func (s *Slide) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// OrderUpdate is one entry of a reorder batch.
type OrderUpdate struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}
