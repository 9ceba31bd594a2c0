package model

import "time"

// DisplaySnapshot is everything a display needs to render one tenant.
type DisplaySnapshot struct {
	Tenant       string         `json:"tenant"`
	Version      int64          `json:"version"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Slides       []Slide        `json:"slides"`
	FixedContent []FixedContent `json:"fixed_content"`
}
