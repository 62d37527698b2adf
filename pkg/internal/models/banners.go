package models

import "time"

type Banner struct {
	BaseModel

	Title    string     `json:"title"`
	Slug     string     `json:"slug" gorm:"uniqueIndex;size:128"`
	ImageURL string     `json:"image_url"`
	LinkURL  *string    `json:"link_url"`
	Position string     `json:"position" gorm:"index"`
	Order    int        `json:"order" gorm:"column:sort_order"`
	IsActive bool       `json:"is_active"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}
